package tutor

import "fmt"

// supportedLanguages is the fixed language catalog, in picker order.
var supportedLanguages = []Language{
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "zh-CN", Name: "Mandarin Chinese"},
	{Code: "el", Name: "Greek"},
}

// supportedMissions is the fixed mission catalog, in picker order.
var supportedMissions = []Mission{
	{
		ID:          "restaurant",
		Title:       "Ordering at a Restaurant",
		Description: "Practice ordering food and drinks from a waiter.",
	},
	{
		ID:          "hotel",
		Title:       "Checking into a Hotel",
		Description: "Role-play checking into a hotel and asking for room details.",
	},
	{
		ID:          "grocery",
		Title:       "Buying Groceries",
		Description: "Ask a store clerk for help finding items on your shopping list.",
	},
	{
		ID:          "train_ticket",
		Title:       "Buying a Train Ticket",
		Description: "Purchase a train ticket to a specific destination from a ticket agent.",
	},
}

// Languages returns a copy of the language catalog.
func Languages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// Missions returns a copy of the mission catalog.
func Missions() []Mission {
	out := make([]Mission, len(supportedMissions))
	copy(out, supportedMissions)
	return out
}

// LookupLanguage finds a language by code.
func LookupLanguage(code string) (Language, error) {
	for _, l := range supportedLanguages {
		if l.Code == code {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("unsupported language %q", code)
}

// LookupMission finds a mission by ID.
func LookupMission(id string) (Mission, error) {
	for _, m := range supportedMissions {
		if m.ID == id {
			return m, nil
		}
	}
	return Mission{}, fmt.Errorf("unknown mission %q", id)
}
