package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/internal/testutil"
)

type SQLStorageTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDatabase
	storage *repository.SQLStorage
	ctx     context.Context
}

func (s *SQLStorageTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.storage = s.testDB.Storage
	s.ctx = context.Background()
}

func (s *SQLStorageTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *SQLStorageTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func TestSQLStorageTestSuite(t *testing.T) {
	suite.Run(t, new(SQLStorageTestSuite))
}

func (s *SQLStorageTestSuite) TestCreateUser_RoundTrip() {
	// Arrange
	in := testutil.NewInsertUser("ana")
	in.Nombre = testutil.Ptr("Ana")

	// Act
	created, err := s.storage.CreateUser(s.ctx, in)

	// Assert
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), created.ID)
	assert.Equal(s.T(), models.ExperienceBeginner, created.Experiencia)
	assert.False(s.T(), created.AuthDiscord)
	assert.Nil(s.T(), created.BrokerNombre)

	fetched, err := s.storage.GetUser(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), fetched)
	assert.Equal(s.T(), "ana", fetched.Username)
	assert.Equal(s.T(), "ana@example.com", fetched.Email)
	assert.Equal(s.T(), "Ana", *fetched.Nombre)

	byName, err := s.storage.GetUserByUsername(s.ctx, "ana")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, byName.ID)

	byEmail, err := s.storage.GetUserByEmail(s.ctx, "ana@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, byEmail.ID)
}

func (s *SQLStorageTestSuite) TestGetUser_UnknownIDIsAbsent() {
	user, err := s.storage.GetUser(s.ctx, uuid.NewString())

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), user)
}

func (s *SQLStorageTestSuite) TestLookups_MalformedID() {
	_, err := s.storage.GetUser(s.ctx, "not-an-id")
	assert.ErrorIs(s.T(), err, repository.ErrInvalidIdentifier)

	_, err = s.storage.GetCourse(s.ctx, "42")
	assert.ErrorIs(s.T(), err, repository.ErrInvalidIdentifier)

	_, err = s.storage.UpdateUserBroker(s.ctx, "nope", "Broker", "123")
	assert.ErrorIs(s.T(), err, repository.ErrInvalidIdentifier)
}

func (s *SQLStorageTestSuite) TestLookupsByAttribute_Absent() {
	user, err := s.storage.GetUserByUsername(s.ctx, "ghost")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), user)

	user, err = s.storage.GetUserByDiscordID(s.ctx, "123456789")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), user)
}

func (s *SQLStorageTestSuite) TestCreateUser_DuplicateUsername() {
	_, err := s.storage.CreateUser(s.ctx, testutil.NewInsertUser("ana"))
	require.NoError(s.T(), err)

	dup := testutil.NewInsertUser("ana")
	dup.Email = "other@example.com"
	_, err = s.storage.CreateUser(s.ctx, dup)

	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateKey)
	var dupErr *repository.DuplicateKeyError
	require.True(s.T(), errors.As(err, &dupErr))
	assert.Equal(s.T(), "username", dupErr.Field)

	users, err := s.storage.ListUsers(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 1)
}

func (s *SQLStorageTestSuite) TestCreateUser_DuplicateEmail() {
	_, err := s.storage.CreateUser(s.ctx, testutil.NewInsertUser("ana"))
	require.NoError(s.T(), err)

	dup := testutil.NewInsertUser("bob")
	dup.Email = "ana@example.com"
	_, err = s.storage.CreateUser(s.ctx, dup)

	var dupErr *repository.DuplicateKeyError
	require.True(s.T(), errors.As(err, &dupErr))
	assert.Equal(s.T(), "email", dupErr.Field)
}

func (s *SQLStorageTestSuite) TestCreateUser_DuplicateDiscordID() {
	first := testutil.NewInsertUser("ana")
	first.DiscordID = testutil.Ptr("998877")
	_, err := s.storage.CreateUser(s.ctx, first)
	require.NoError(s.T(), err)

	second := testutil.NewInsertUser("bob")
	second.DiscordID = testutil.Ptr("998877")
	_, err = s.storage.CreateUser(s.ctx, second)

	var dupErr *repository.DuplicateKeyError
	require.True(s.T(), errors.As(err, &dupErr))
	assert.Equal(s.T(), "discordId", dupErr.Field)
}

func (s *SQLStorageTestSuite) TestCreateUser_ManyWithoutDiscordID() {
	// NULL discord ids must not collide with each other
	for _, name := range []string{"ana", "bob", "carla"} {
		_, err := s.storage.CreateUser(s.ctx, testutil.NewInsertUser(name))
		require.NoError(s.T(), err)
	}

	users, err := s.storage.ListUsers(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 3)
}

func (s *SQLStorageTestSuite) TestCreateUser_ConcurrentSameUsername() {
	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dups      int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := testutil.NewInsertUser("racer")
			in.Email = uuid.NewString() + "@example.com"
			_, err := s.storage.CreateUser(s.ctx, in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, repository.ErrDuplicateKey):
				dups++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(s.T(), 1, successes)
	assert.Equal(s.T(), attempts-1, dups)
}

func (s *SQLStorageTestSuite) TestUpdateUserBroker() {
	user, err := s.storage.CreateUser(s.ctx, testutil.NewInsertUser("ana"))
	require.NoError(s.T(), err)
	assert.True(s.T(), user.NeedsBrokerProfile())

	updated, err := s.storage.UpdateUserBroker(s.ctx, user.ID, "IC Markets", "CT-1001")

	require.NoError(s.T(), err)
	require.NotNil(s.T(), updated)
	assert.Equal(s.T(), "IC Markets", *updated.BrokerNombre)
	assert.Equal(s.T(), "CT-1001", *updated.BrokerCuenta)
	assert.False(s.T(), updated.NeedsBrokerProfile())
	assert.Equal(s.T(), "ana", updated.Username)
}

func (s *SQLStorageTestSuite) TestUpdateUserBroker_UnknownUserCreatesNothing() {
	updated, err := s.storage.UpdateUserBroker(s.ctx, uuid.NewString(), "IC Markets", "CT-1001")

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), updated)

	users, err := s.storage.ListUsers(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), users)
}

func (s *SQLStorageTestSuite) TestCourses_PremiumPartition() {
	_, err := s.storage.CreateCourse(s.ctx, testutil.FreeCourse("Intro"))
	require.NoError(s.T(), err)
	_, err = s.storage.CreateCourse(s.ctx, testutil.FreeCourse("Velas"))
	require.NoError(s.T(), err)
	premium, err := s.storage.CreateCourse(s.ctx, testutil.PremiumCourse("Smart Money"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "€297", *premium.Price)

	all, err := s.storage.ListCourses(s.ctx)
	require.NoError(s.T(), err)
	free, err := s.storage.ListCoursesByPremium(s.ctx, false)
	require.NoError(s.T(), err)
	paid, err := s.storage.ListCoursesByPremium(s.ctx, true)
	require.NoError(s.T(), err)

	assert.Len(s.T(), all, 3)
	assert.Len(s.T(), free, 2)
	require.Len(s.T(), paid, 1)
	assert.Equal(s.T(), premium.ID, paid[0].ID)
	for _, c := range free {
		assert.False(s.T(), c.IsPremium)
	}
}

func (s *SQLStorageTestSuite) TestListCourses_EmptyIsNotNil() {
	courses, err := s.storage.ListCourses(s.ctx)

	require.NoError(s.T(), err)
	assert.NotNil(s.T(), courses)
	assert.Empty(s.T(), courses)
}

func (s *SQLStorageTestSuite) TestTestimonials_Visibility() {
	visible, err := s.storage.CreateTestimonial(s.ctx, testutil.NewTestimonial("María", 4.5))
	require.NoError(s.T(), err)
	assert.True(s.T(), visible.IsVisible)
	assert.Equal(s.T(), 4.5, visible.Rating)

	hiddenIn := testutil.NewTestimonial("Carlos", 0)
	hiddenIn.IsVisible = testutil.Ptr(false)
	hidden, err := s.storage.CreateTestimonial(s.ctx, hiddenIn)
	require.NoError(s.T(), err)
	assert.False(s.T(), hidden.IsVisible)
	assert.Equal(s.T(), 0.0, hidden.Rating)

	shown, err := s.storage.ListTestimonialsByVisibility(s.ctx, true)
	require.NoError(s.T(), err)
	require.Len(s.T(), shown, 1)
	assert.Equal(s.T(), visible.ID, shown[0].ID)

	all, err := s.storage.ListTestimonials(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)

	fetched, err := s.storage.GetTestimonial(s.ctx, hidden.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Carlos", fetched.Name)
}

func (s *SQLStorageTestSuite) TestEnrollments_ListEmbedsCourse() {
	user, err := s.storage.CreateUser(s.ctx, testutil.NewInsertUser("ana"))
	require.NoError(s.T(), err)
	course, err := s.storage.CreateCourse(s.ctx, testutil.FreeCourse("Intro"))
	require.NoError(s.T(), err)

	enrollment, err := s.storage.CreateEnrollment(s.ctx, &models.InsertEnrollment{UserID: user.ID, CourseID: course.ID})
	require.NoError(s.T(), err)
	assert.False(s.T(), enrollment.EnrollmentDate.IsZero())

	fetched, err := s.storage.GetEnrollment(s.ctx, enrollment.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, fetched.UserID)

	list, err := s.storage.ListUserEnrollments(s.ctx, user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	require.NotNil(s.T(), list[0].Course)
	assert.Equal(s.T(), "Intro", list[0].Course.Title)

	other, err := s.storage.ListUserEnrollments(s.ctx, uuid.NewString())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), other)
}

func TestSQLStorage_ClosedDatabaseIsUnavailable(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	require.NoError(t, testDB.Storage.Close())

	user, err := testDB.Storage.GetUserByUsername(context.Background(), "ana")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	assert.False(t, errors.Is(err, repository.ErrDuplicateKey))

	assert.ErrorIs(t, testDB.Storage.Ping(context.Background()), repository.ErrStorageUnavailable)
}
