package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RootMessage is returned by the liveness probe on "/"
const RootMessage = "Success: Cooking Assistant API is running"

// Root answers the liveness probe
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": RootMessage})
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Cooking Assistant API is running",
		"version": "v1.0.0",
	})
}
