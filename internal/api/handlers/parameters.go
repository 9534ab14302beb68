package handlers

import (
	"net/http"

	"home-battery-roi/internal/api/models"
	"home-battery-roi/internal/config"

	"github.com/gin-gonic/gin"
)

// ListParameters handles GET /api/v1/parameters
func ListParameters(c *gin.Context) {
	d := config.Default()
	params := []models.ParameterInfo{
		{Name: "day_price", Type: "float", Description: "Import price per kWh during the day tariff", Default: d.Tariff.DayPrice},
		{Name: "night_price", Type: "float", Description: "Import price per kWh during the night tariff", Default: d.Tariff.NightPrice},
		{Name: "feed_in_price", Type: "float", Description: "Price paid per kWh exported to the grid", Default: d.Tariff.FeedInPrice},
		{Name: "day_start_hour", Type: "int", Description: "First hour of the day tariff (local time)", Default: d.Tariff.DayStartHour},
		{Name: "day_end_hour", Type: "int", Description: "Hour the day tariff ends, exclusive", Default: d.Tariff.DayEndHour},
		{Name: "cost_per_kwh", Type: "float", Description: "Battery purchase cost per kWh of capacity", Default: d.Battery.CostPerKWh},
		{Name: "lifetime_years", Type: "float", Description: "Expected battery lifetime in years", Default: d.Battery.LifetimeYears},
		{Name: "round_trip_efficiency", Type: "float", Description: "Fraction of surplus that ends up stored, in (0, 1]", Default: d.Battery.RoundTripEfficiency},
		{Name: "capacities", Type: "float[]", Description: "Candidate capacities in kWh", Default: d.Capacities},
	}
	c.JSON(http.StatusOK, gin.H{"parameters": params})
}

// GetDefaults handles GET /api/v1/defaults
func GetDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, config.Default())
}
