package core

// CategoryStyle is presentation metadata derived from a goal category.
// The backend never stores it; it is attached when a goal crosses the
// wire boundary so every consumer renders categories the same way.
type CategoryStyle struct {
	Icon  string
	Color string
}

var goalCategoryStyles = map[string]CategoryStyle{
	"Viagem":        {Icon: "Plane", Color: "blue"},
	"Quitar Dívida": {Icon: "CreditCard", Color: "red"},
	"Reserva":       {Icon: "PiggyBank", Color: "green"},
	"Casa/Imóvel":   {Icon: "Home", Color: "purple"},
	"Veículo":       {Icon: "Car", Color: "orange"},
	"Educação":      {Icon: "GraduationCap", Color: "indigo"},
}

var defaultGoalStyle = CategoryStyle{Icon: "Target", Color: "gray"}

// StyleForCategory returns the presentation style for a goal category,
// falling back to a neutral style for unknown categories.
func StyleForCategory(category string) CategoryStyle {
	if s, ok := goalCategoryStyles[category]; ok {
		return s
	}
	return defaultGoalStyle
}

// GoalCategories lists the categories the backend accepts for goals.
func GoalCategories() []string {
	return []string{
		"Viagem",
		"Quitar Dívida",
		"Reserva",
		"Casa/Imóvel",
		"Veículo",
		"Educação",
	}
}

// KnownGoalCategory reports whether the category is one of the canonical
// goal categories.
func KnownGoalCategory(category string) bool {
	_, ok := goalCategoryStyles[category]
	return ok
}
