package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Category is the closed set of logical endpoint categories. Cache policy
// and invalidation topics hang off the category, not off individual paths,
// so adding an endpoint forces a policy decision here.
type Category int

const (
	CategoryDeviceAuth Category = iota
	CategoryProfile
	CategoryProfileMutation
	CategoryMealList
	CategoryMealMutation
	CategoryWaterList
	CategoryWaterMutation
	CategoryStatsWeekly
	CategoryStatsMonthly
	CategoryPhotoUpload
)

// Cache TTLs per read category. Aggregates tolerate more staleness than
// day listings; the profile changes rarely.
const (
	ttlProfile  = 15 * time.Minute
	ttlMealList = 5 * time.Minute
	ttlWater    = 5 * time.Minute
	ttlWeekly   = 30 * time.Minute
	ttlMonthly  = time.Hour
)

// Invalidation topic prefixes.
const (
	topicMeals   = "/api/v1/meals"
	topicWater   = "/api/v1/water"
	topicStats   = "/api/v1/stats"
	topicProfile = "/api/v1/profile"
)

// RequiresAuth reports whether requests in this category carry the bearer
// credential. Only the device exchange itself is unauthenticated.
func (c Category) RequiresAuth() bool {
	return c != CategoryDeviceAuth
}

// CachePolicy returns the TTL for cache-eligible read categories.
// Mutations, uploads and the device exchange are never cached.
func (c Category) CachePolicy() (ttl time.Duration, eligible bool) {
	switch c {
	case CategoryProfile:
		return ttlProfile, true
	case CategoryMealList:
		return ttlMealList, true
	case CategoryWaterList:
		return ttlWater, true
	case CategoryStatsWeekly:
		return ttlWeekly, true
	case CategoryStatsMonthly:
		return ttlMonthly, true
	case CategoryDeviceAuth, CategoryProfileMutation, CategoryMealMutation,
		CategoryWaterMutation, CategoryPhotoUpload:
		return 0, false
	}
	return 0, false
}

// InvalidationTopics returns the cache prefixes a successful call in this
// category invalidates. Record mutations also invalidate the aggregates
// computed from them.
func (c Category) InvalidationTopics() []string {
	switch c {
	case CategoryMealMutation, CategoryPhotoUpload:
		return []string{topicMeals, topicStats}
	case CategoryWaterMutation:
		return []string{topicWater, topicStats}
	case CategoryProfileMutation:
		return []string{topicProfile}
	case CategoryDeviceAuth, CategoryProfile, CategoryMealList,
		CategoryWaterList, CategoryStatsWeekly, CategoryStatsMonthly:
		return nil
	}
	return nil
}

// Endpoint is one concrete request target. Path includes the query string
// and doubles as the cache key.
type Endpoint struct {
	Category Category
	Method   string
	Path     string
}

// CacheKey returns the response-cache key for this endpoint.
func (e Endpoint) CacheKey() string {
	return e.Path
}

// DeviceAuth is the unauthenticated device-exchange endpoint.
func DeviceAuth() Endpoint {
	return Endpoint{Category: CategoryDeviceAuth, Method: http.MethodPost, Path: "/api/v1/auth/device"}
}

// GetProfile reads the device profile.
func GetProfile() Endpoint {
	return Endpoint{Category: CategoryProfile, Method: http.MethodGet, Path: "/api/v1/profile"}
}

// UpdateProfile replaces the device profile.
func UpdateProfile() Endpoint {
	return Endpoint{Category: CategoryProfileMutation, Method: http.MethodPut, Path: "/api/v1/profile"}
}

// ListMeals reads the meals for one calendar day.
func ListMeals(date string) Endpoint {
	return Endpoint{
		Category: CategoryMealList,
		Method:   http.MethodGet,
		Path:     "/api/v1/meals?date=" + url.QueryEscape(date),
	}
}

// CreateMeal creates a meal record.
func CreateMeal() Endpoint {
	return Endpoint{Category: CategoryMealMutation, Method: http.MethodPost, Path: "/api/v1/meals"}
}

// UpdateMeal replaces a meal record.
func UpdateMeal(id string) Endpoint {
	return Endpoint{
		Category: CategoryMealMutation,
		Method:   http.MethodPut,
		Path:     fmt.Sprintf("/api/v1/meals/%s", url.PathEscape(id)),
	}
}

// DeleteMeal removes a meal record.
func DeleteMeal(id string) Endpoint {
	return Endpoint{
		Category: CategoryMealMutation,
		Method:   http.MethodDelete,
		Path:     fmt.Sprintf("/api/v1/meals/%s", url.PathEscape(id)),
	}
}

// UploadMealPhoto attaches a photo to a meal (multipart).
func UploadMealPhoto(id string) Endpoint {
	return Endpoint{
		Category: CategoryPhotoUpload,
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/api/v1/meals/%s/photo", url.PathEscape(id)),
	}
}

// ListWater reads the water logs for one calendar day.
func ListWater(date string) Endpoint {
	return Endpoint{
		Category: CategoryWaterList,
		Method:   http.MethodGet,
		Path:     "/api/v1/water?date=" + url.QueryEscape(date),
	}
}

// AddWater creates a water log entry.
func AddWater() Endpoint {
	return Endpoint{Category: CategoryWaterMutation, Method: http.MethodPost, Path: "/api/v1/water"}
}

// DeleteWater removes a water log entry.
func DeleteWater(id string) Endpoint {
	return Endpoint{
		Category: CategoryWaterMutation,
		Method:   http.MethodDelete,
		Path:     fmt.Sprintf("/api/v1/water/%s", url.PathEscape(id)),
	}
}

// WeeklyStats reads the weekly aggregate starting at the given day.
func WeeklyStats(start string) Endpoint {
	return Endpoint{
		Category: CategoryStatsWeekly,
		Method:   http.MethodGet,
		Path:     "/api/v1/stats/weekly?start=" + url.QueryEscape(start),
	}
}

// MonthlyStats reads the monthly aggregate for a YYYY-MM month.
func MonthlyStats(month string) Endpoint {
	return Endpoint{
		Category: CategoryStatsMonthly,
		Method:   http.MethodGet,
		Path:     "/api/v1/stats/monthly?month=" + url.QueryEscape(month),
	}
}
