package api

import "time"

// Meal is a single logged meal. Dates are calendar days in the device's
// local zone, formatted YYYY-MM-DD; the server treats them as opaque scope
// keys and never re-interprets them.
type Meal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Calories  int       `json:"calories"`
	Protein   float64   `json:"protein_g"`
	Carbs     float64   `json:"carbs_g"`
	Fat       float64   `json:"fat_g"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WaterLog is a single water intake entry.
type WaterLog struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Milliliters int       `json:"milliliters"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile holds the per-device user profile and daily goals.
type Profile struct {
	DisplayName      string    `json:"display_name"`
	DailyCalorieGoal int       `json:"daily_calorie_goal"`
	DailyWaterGoalML int       `json:"daily_water_goal_ml"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DayStats is one day's aggregate within a stats response.
type DayStats struct {
	Date        string `json:"date"`
	Calories    int    `json:"calories"`
	Meals       int    `json:"meals"`
	Milliliters int    `json:"milliliters"`
}

// StatsResponse is the weekly/monthly aggregate payload.
type StatsResponse struct {
	Days []DayStats `json:"days"`
}

// UploadResponse is returned by the meal photo upload endpoint.
type UploadResponse struct {
	PhotoURL string `json:"photo_url"`
}
