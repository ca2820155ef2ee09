package main

import "github.com/tradingzen/backend/internal/models"

const (
	previewVideo = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	courseImage  = "?auto=format&fit=crop&w=600&h=400"
	avatarImage  = "?auto=format&fit=crop&w=100&h=100"
)

func ptr[T any](v T) *T { return &v }

func premium(title, description, duration, level, photo, price string, rating, reviews int) *models.InsertCourse {
	return &models.InsertCourse{
		Title:       title,
		Description: description,
		Duration:    duration,
		Level:       level,
		Image:       "https://images.unsplash.com/" + photo + courseImage,
		VideoURL:    previewVideo,
		IsPremium:   true,
		Price:       ptr(price),
		Rating:      ptr(rating),
		ReviewCount: ptr(reviews),
	}
}

func free(title, description, duration, level, photo string) *models.InsertCourse {
	return &models.InsertCourse{
		Title:       title,
		Description: description,
		Duration:    duration,
		Level:       level,
		Image:       "https://images.unsplash.com/" + photo + courseImage,
		VideoURL:    previewVideo,
	}
}

var seedCourses = []*models.InsertCourse{
	free("Introducción al Análisis Técnico",
		"Aprende los fundamentos del análisis técnico y cómo identificar las tendencias en los gráficos de precios.",
		"45 minutos", "Principiante", "photo-1535320903710-d993d3d77d29"),
	free("Gestión del Riesgo y Capital",
		"Descubre cómo proteger tu capital y calcular el tamaño correcto de cada posición según tu perfil de riesgo.",
		"60 minutos", "Intermedio", "photo-1460925895917-afdab827c52f"),
	free("Psicología del Trading",
		"Aprende a gestionar tus emociones durante la operativa y a mantener la disciplina con tu plan de trading.",
		"40 minutos", "Todos los niveles", "photo-1579532537598-459ecdaf39cc"),

	premium("Trading Zen Completo",
		"Curso completo que abarca desde los fundamentos del trading hasta estrategias avanzadas y gestión de emociones.",
		"15 horas", "Todos los niveles", "photo-1590283603385-17ffb3a7f29f", "€297", 5, 243),
	premium("Análisis Técnico Avanzado",
		"Domina patrones complejos, indicadores avanzados y estrategias de entrada y salida precisas.",
		"8 horas", "Avanzado", "photo-1642790551116-10d23984638f", "€197", 4, 158),
	premium("Mentalidad del Trader Exitoso",
		"Supera tus limitaciones mentales y desarrolla la psicología de un trader consistentemente rentable.",
		"6 horas", "Intermedio", "photo-1606189455660-927d6e394ed4", "€147", 5, 97),
	premium("Trading de Criptomonedas",
		"Estrategias específicas para operar en el mercado de criptomonedas con confianza y precisión.",
		"7 horas", "Intermedio", "photo-1518546305927-5a555bb7020d", "€179", 4, 126),
	premium("Swing Trading Profesional",
		"Aprende a capturar movimientos de varios días o semanas con estrategias de swing trading optimizadas.",
		"6 horas", "Intermedio", "photo-1611974789855-9c2a0a7236a3", "€169", 5, 84),
	premium("Day Trading Profesional",
		"Estrategias específicas para traders intradiarios y técnicas para maximizar ganancias en sesiones cortas.",
		"8 horas", "Avanzado", "photo-1535320485706-44d43b33c8d5", "€199", 4, 112),
}

var seedTestimonials = []*models.InsertTestimonial{
	{
		Name:        "Ana Rodríguez",
		Position:    "Trader Independiente",
		Avatar:      "https://images.unsplash.com/photo-1573496359142-b8d87734a5a2" + avatarImage,
		Rating:      ptr(5.0),
		Comment:     "Trading Zen ha transformado mi enfoque en los mercados. No solo mejoré mis análisis técnicos, sino que aprendí a gestionar mis emociones, lo que ha sido clave para mi consistencia.",
		Achievement: ptr("+62% de rendimiento desde que completó el curso"),
	},
	{
		Name:        "Carlos Méndez",
		Position:    "Inversor Particular",
		Avatar:      "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d" + avatarImage,
		Rating:      ptr(5.0),
		Comment:     "Lo que diferencia a Trading Zen es su enfoque completo. No solo aprendes estrategias, sino a mantener la calma en momentos de volatilidad. La comunidad y el soporte continuo son invaluables.",
		Achievement: ptr("Dejó su trabajo para dedicarse al trading a tiempo completo"),
	},
	{
		Name:        "Lucía Torres",
		Position:    "Trader de Criptomonedas",
		Avatar:      "https://images.unsplash.com/photo-1580489944761-15a19d654956" + avatarImage,
		Rating:      ptr(4.5),
		Comment:     "Después de perder dinero con diversos sistemas de trading, encontré Trading Zen y su metodología cambió mi perspectiva. Ahora tengo un sistema probado y la mentalidad correcta para ejecutarlo.",
		Achievement: ptr("Recuperó su inversión en el curso en menos de 3 meses"),
	},
}
