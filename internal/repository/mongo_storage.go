package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tradingzen/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStorage implements Storage on MongoDB. Identifiers are ObjectID hex
// strings.
type MongoStorage struct {
	db           *mongo.Database
	users        *mongo.Collection
	courses      *mongo.Collection
	enrollments  *mongo.Collection
	testimonials *mongo.Collection
}

var _ Storage = (*MongoStorage)(nil)

func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{
		db:           db,
		users:        db.Collection("users"),
		courses:      db.Collection("courses"),
		enrollments:  db.Collection("enrollments"),
		testimonials: db.Collection("testimonials"),
	}
}

// EnsureIndexes creates the unique and lookup indexes. The unique indexes
// back the username, email and Discord id invariants.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "discordId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		s.courses:      {{Keys: bson.D{{Key: "isPremium", Value: 1}}}},
		s.testimonials: {{Keys: bson.D{{Key: "isVisible", Value: 1}}}},
		s.enrollments: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "courseId", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return unavailable("ensure_indexes", err)
		}
	}
	return nil
}

func (s *MongoStorage) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, nil); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.db.Client().Disconnect(ctx)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidIdentifier
	}
	return oid, nil
}

// now truncates to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func mongoFindOne[D any](ctx context.Context, coll *mongo.Collection, op string, filter any) (*D, error) {
	var doc D
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, unavailable(op, err)
	}
	return &doc, nil
}

func mongoFind[D any](ctx context.Context, coll *mongo.Collection, op string, filter any, sortKey string) ([]D, error) {
	opts := options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}})
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable(op, err)
	}
	docs := []D{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable(op, err)
	}
	return docs, nil
}

func mongoInsert(ctx context.Context, coll *mongo.Collection, op string, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &DuplicateKeyError{Field: mongoDuplicateField(err), Err: err}
		}
		return unavailable(op, err)
	}
	return nil
}

// mongoDuplicateField names the unique index behind an E11000 error. Only
// the "index: <name>" segment is read because the "dup key" segment echoes
// the conflicting value, which may contain another field's name.
func mongoDuplicateField(err error) string {
	var msgs []string
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			msgs = append(msgs, e.Message)
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, err.Error())
	}
	for _, msg := range msgs {
		msg, _, _ = strings.Cut(msg, "dup key")
		if _, index, ok := strings.Cut(msg, "index: "); ok {
			if field := uniqueField(index); field != "" {
				return field
			}
		}
	}
	return ""
}

// Users

type userDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	Username        string             `bson:"username"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"`
	Nombre          *string            `bson:"nombre,omitempty"`
	Telefono        *string            `bson:"telefono,omitempty"`
	Experiencia     string             `bson:"experiencia"`
	BrokerNombre    *string            `bson:"brokerNombre,omitempty"`
	BrokerCuenta    *string            `bson:"brokerCuenta,omitempty"`
	DiscordID       *string            `bson:"discordId,omitempty"`
	DiscordUsername *string            `bson:"discordUsername,omitempty"`
	AuthDiscord     bool               `bson:"authDiscord"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func (d *userDocument) model() *models.User {
	return &models.User{
		ID:              d.ID.Hex(),
		Username:        d.Username,
		Email:           d.Email,
		Password:        d.Password,
		Nombre:          d.Nombre,
		Telefono:        d.Telefono,
		Experiencia:     models.Experience(d.Experiencia),
		BrokerNombre:    d.BrokerNombre,
		BrokerCuenta:    d.BrokerCuenta,
		DiscordID:       d.DiscordID,
		DiscordUsername: d.DiscordUsername,
		AuthDiscord:     d.AuthDiscord,
		CreatedAt:       d.CreatedAt,
	}
}

func (s *MongoStorage) findUser(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	doc, err := mongoFindOne[userDocument](ctx, s.users, op, filter)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *MongoStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, "get_user", bson.M{"_id": oid})
}

func (s *MongoStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "get_user_by_username", bson.M{"username": username})
}

func (s *MongoStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "get_user_by_email", bson.M{"email": email})
}

func (s *MongoStorage) GetUserByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	return s.findUser(ctx, "get_user_by_discord_id", bson.M{"discordId": discordID})
}

func (s *MongoStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	docs, err := mongoFind[userDocument](ctx, s.users, "list_users", bson.M{}, "createdAt")
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].model())
	}
	return users, nil
}

func (s *MongoStorage) CreateUser(ctx context.Context, in *models.InsertUser) (*models.User, error) {
	user := in.ToUser()
	doc := userDocument{
		ID:              primitive.NewObjectID(),
		Username:        user.Username,
		Email:           user.Email,
		Password:        user.Password,
		Nombre:          user.Nombre,
		Telefono:        user.Telefono,
		Experiencia:     string(user.Experiencia),
		DiscordID:       user.DiscordID,
		DiscordUsername: user.DiscordUsername,
		AuthDiscord:     user.AuthDiscord,
		CreatedAt:       now(),
	}
	if err := mongoInsert(ctx, s.users, "create_user", doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *MongoStorage) UpdateUserBroker(ctx context.Context, userID, brokerNombre, brokerCuenta string) (*models.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	var doc userDocument
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"brokerNombre": brokerNombre, "brokerCuenta": brokerCuenta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, unavailable("update_user_broker", err)
	}
	return doc.model(), nil
}

// Courses

type courseDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    string             `bson:"duration"`
	Level       string             `bson:"level"`
	Image       string             `bson:"image"`
	VideoURL    string             `bson:"videoUrl"`
	IsPremium   bool               `bson:"isPremium"`
	Price       *string            `bson:"price,omitempty"`
	Rating      *int               `bson:"rating,omitempty"`
	ReviewCount *int               `bson:"reviewCount,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *courseDocument) model() *models.Course {
	return &models.Course{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Level:       d.Level,
		Image:       d.Image,
		VideoURL:    d.VideoURL,
		IsPremium:   d.IsPremium,
		Price:       d.Price,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		CreatedAt:   d.CreatedAt,
	}
}

func coursesFrom(docs []courseDocument) []models.Course {
	courses := make([]models.Course, 0, len(docs))
	for i := range docs {
		courses = append(courses, *docs[i].model())
	}
	return courses
}

func (s *MongoStorage) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	doc, err := mongoFindOne[courseDocument](ctx, s.courses, "get_course", bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *MongoStorage) ListCourses(ctx context.Context) ([]models.Course, error) {
	docs, err := mongoFind[courseDocument](ctx, s.courses, "list_courses", bson.M{}, "createdAt")
	if err != nil {
		return nil, err
	}
	return coursesFrom(docs), nil
}

func (s *MongoStorage) ListCoursesByPremium(ctx context.Context, premium bool) ([]models.Course, error) {
	docs, err := mongoFind[courseDocument](ctx, s.courses, "list_courses_by_premium", bson.M{"isPremium": premium}, "createdAt")
	if err != nil {
		return nil, err
	}
	return coursesFrom(docs), nil
}

func (s *MongoStorage) CreateCourse(ctx context.Context, in *models.InsertCourse) (*models.Course, error) {
	course := in.ToCourse()
	doc := courseDocument{
		ID:          primitive.NewObjectID(),
		Title:       course.Title,
		Description: course.Description,
		Duration:    course.Duration,
		Level:       course.Level,
		Image:       course.Image,
		VideoURL:    course.VideoURL,
		IsPremium:   course.IsPremium,
		Price:       course.Price,
		Rating:      course.Rating,
		ReviewCount: course.ReviewCount,
		CreatedAt:   now(),
	}
	if err := mongoInsert(ctx, s.courses, "create_course", doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Testimonials

type testimonialDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Position    string             `bson:"position"`
	Avatar      string             `bson:"avatar"`
	Rating      float64            `bson:"rating"`
	Comment     string             `bson:"comment"`
	Achievement *string            `bson:"achievement,omitempty"`
	IsVisible   bool               `bson:"isVisible"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *testimonialDocument) model() *models.Testimonial {
	return &models.Testimonial{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Position:    d.Position,
		Avatar:      d.Avatar,
		Rating:      d.Rating,
		Comment:     d.Comment,
		Achievement: d.Achievement,
		IsVisible:   d.IsVisible,
		CreatedAt:   d.CreatedAt,
	}
}

func testimonialsFrom(docs []testimonialDocument) []models.Testimonial {
	testimonials := make([]models.Testimonial, 0, len(docs))
	for i := range docs {
		testimonials = append(testimonials, *docs[i].model())
	}
	return testimonials
}

func (s *MongoStorage) GetTestimonial(ctx context.Context, id string) (*models.Testimonial, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	doc, err := mongoFindOne[testimonialDocument](ctx, s.testimonials, "get_testimonial", bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *MongoStorage) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	docs, err := mongoFind[testimonialDocument](ctx, s.testimonials, "list_testimonials", bson.M{}, "createdAt")
	if err != nil {
		return nil, err
	}
	return testimonialsFrom(docs), nil
}

func (s *MongoStorage) ListTestimonialsByVisibility(ctx context.Context, visible bool) ([]models.Testimonial, error) {
	docs, err := mongoFind[testimonialDocument](ctx, s.testimonials, "list_testimonials_by_visibility", bson.M{"isVisible": visible}, "createdAt")
	if err != nil {
		return nil, err
	}
	return testimonialsFrom(docs), nil
}

func (s *MongoStorage) CreateTestimonial(ctx context.Context, in *models.InsertTestimonial) (*models.Testimonial, error) {
	t := in.ToTestimonial()
	doc := testimonialDocument{
		ID:          primitive.NewObjectID(),
		Name:        t.Name,
		Position:    t.Position,
		Avatar:      t.Avatar,
		Rating:      t.Rating,
		Comment:     t.Comment,
		Achievement: t.Achievement,
		IsVisible:   t.IsVisible,
		CreatedAt:   now(),
	}
	if err := mongoInsert(ctx, s.testimonials, "create_testimonial", doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Enrollments

type enrollmentDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	UserID         primitive.ObjectID `bson:"userId"`
	CourseID       primitive.ObjectID `bson:"courseId"`
	EnrollmentDate time.Time          `bson:"enrollmentDate"`
}

func (d *enrollmentDocument) model() *models.Enrollment {
	return &models.Enrollment{
		ID:             d.ID.Hex(),
		UserID:         d.UserID.Hex(),
		CourseID:       d.CourseID.Hex(),
		EnrollmentDate: d.EnrollmentDate,
	}
}

func (s *MongoStorage) GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	doc, err := mongoFindOne[enrollmentDocument](ctx, s.enrollments, "get_enrollment", bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.model(), nil
}

// ListUserEnrollments returns the user's enrollments with their course
// attached. Courses are fetched with a single $in query.
func (s *MongoStorage) ListUserEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	docs, err := mongoFind[enrollmentDocument](ctx, s.enrollments, "list_user_enrollments", bson.M{"userId": oid}, "enrollmentDate")
	if err != nil {
		return nil, err
	}
	enrollments := make([]models.Enrollment, 0, len(docs))
	if len(docs) == 0 {
		return enrollments, nil
	}

	courseIDs := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		courseIDs = append(courseIDs, d.CourseID)
	}
	courseDocs, err := mongoFind[courseDocument](ctx, s.courses, "list_user_enrollments", bson.M{"_id": bson.M{"$in": courseIDs}}, "createdAt")
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Course, len(courseDocs))
	for i := range courseDocs {
		byID[courseDocs[i].ID] = courseDocs[i].model()
	}

	for i := range docs {
		e := docs[i].model()
		e.Course = byID[docs[i].CourseID]
		enrollments = append(enrollments, *e)
	}
	return enrollments, nil
}

// CreateEnrollment writes the join record without checking references;
// EnrollmentService does that before calling it.
func (s *MongoStorage) CreateEnrollment(ctx context.Context, in *models.InsertEnrollment) (*models.Enrollment, error) {
	userID, err := objectID(in.UserID)
	if err != nil {
		return nil, err
	}
	courseID, err := objectID(in.CourseID)
	if err != nil {
		return nil, err
	}

	doc := enrollmentDocument{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		CourseID:       courseID,
		EnrollmentDate: now(),
	}
	if err := mongoInsert(ctx, s.enrollments, "create_enrollment", doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}
