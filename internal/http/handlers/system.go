package handlers

import (
	"net/http"

	intconfig "backend/internal/config"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "shuttle backend berjalan"})
}

func DBCheck(c *gin.Context) {
	if intconfig.DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database belum terhubung"})
		return
	}
	if err := intconfig.EnsureDB(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "gagal ping database: " + err.Error()})
		return
	}
	var count int
	if err := intconfig.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "gagal query ke database: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "koneksi database OK", "users_in_db": count})
}
