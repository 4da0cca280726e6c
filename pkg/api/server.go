// Package api provides the REST API server for sq80extract
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/james-see/sq80extract/pkg/converter"
	"github.com/james-see/sq80extract/pkg/converter/devices"
	"github.com/james-see/sq80extract/pkg/disk"
	"github.com/james-see/sq80extract/pkg/extract"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// maxImageSize bounds uploads; a full dump is a little under 900 KiB
const maxImageSize = 2 << 20

// @title SQ80 Extract API
// @version 1.0
// @description API for listing and extracting programs and banks from Ensoniq SQ80 disk images
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with all routes
func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/directory", handleDirectory)
		v1.POST("/extract/:mode", handleExtract)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			if v7, err := uuid.NewV7(); err == nil {
				id = v7.String()
			} else {
				id = uuid.NewString()
			}
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sq80extract",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the output formats and extraction modes
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats": converter.GetSupportedFormats(),
		"modes": []string{
			string(extract.ModeProgram),
			string(extract.ModeBank),
			string(extract.ModeVirtualBank),
		},
	})
}

// handleDirectory godoc
// @Summary List disk contents
// @Description Upload an SQ80 disk image and receive its banks, programs and virtual banks
// @Tags disk
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "SQ80 disk image"
// @Param deleted query bool false "Include deleted programs"
// @Success 200 {object} extract.Listing
// @Failure 400 {object} map[string]string
// @Router /api/v1/directory [post]
func handleDirectory(c *gin.Context) {
	img, ok := readImage(c)
	if !ok {
		return
	}

	listing, err := extract.List(img, c.Query("deleted") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// handleExtract godoc
// @Summary Extract a program or bank
// @Description Upload an SQ80 disk image and receive one program, bank or virtual bank
// @Tags extract
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param mode path string true "prog, bank or virtbank"
// @Param file formData file true "SQ80 disk image"
// @Param number query int true "Item number, counting from 1"
// @Param format query string false "syx (default), bin or mid"
// @Param channel query int false "SysEx MIDI channel 1-16 (default 1)"
// @Param deleted query bool false "Allow deleted programs"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/extract/{mode} [post]
func handleExtract(c *gin.Context) {
	mode, err := extract.ParseMode(c.Param("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	number, err := strconv.Atoi(c.Query("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number must be an integer counting from 1"})
		return
	}

	format, err := converter.ParseFormat(c.DefaultQuery("format", "syx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := strconv.Atoi(c.DefaultQuery("channel", "1"))
	if err != nil || channel < 1 || channel > 16 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel must be between 1 and 16"})
		return
	}

	img, ok := readImage(c)
	if !ok {
		return
	}

	rec, err := extract.ReadRecord(img, mode, number, c.Query("deleted") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	conv := converter.New(devices.NewSQ80())
	result, err := conv.Encode(&converter.Dump{Kind: rec.Kind, Channel: uint8(channel - 1), Data: rec.Data}, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	contentType := "application/octet-stream"
	if format == converter.FormatMIDI {
		contentType = "audio/midi"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.FileName(format)))
	c.Data(http.StatusOK, contentType, result)
}

func readImage(c *gin.Context) (*disk.Image, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, false
	}
	if len(data) > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large for an SQ80 disk image"})
		return nil, false
	}

	img, err := disk.FromBytes(header.Filename, data)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return img, true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, extract.ErrBlank), errors.Is(err, extract.ErrNoVirtualBank):
		status = http.StatusNotFound
	case errors.Is(err, disk.ErrNotSQ80Image),
		errors.Is(err, disk.ErrTruncated),
		errors.Is(err, disk.ErrBadDirectory),
		errors.Is(err, disk.ErrNameMismatch),
		errors.Is(err, extract.ErrNumberRequired),
		errors.Is(err, extract.ErrNumberZero),
		errors.Is(err, extract.ErrOutOfRange):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
