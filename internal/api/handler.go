package api

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
)

// RequestIDHeader carries the per-request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

const localRequestID = "requestID"

// ParseResponse is the JSON response from the /api/parse endpoint.
type ParseResponse struct {
	Success   bool                    `json:"success"`
	RequestID string                  `json:"requestId"`
	FileName  string                  `json:"fileName,omitempty"`
	Statement *models.StatementFields `json:"statement,omitempty"`
	Error     string                  `json:"error,omitempty"`
	ErrorKind string                  `json:"errorKind,omitempty"`
	RawText   string                  `json:"rawText,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	dispatcher  *parser.Dispatcher
	logger      *log.Logger
	maxFileSize int64
	version     string
}

// NewHandler returns handlers that classify uploads with dispatcher.
// A nil logger discards output.
func NewHandler(dispatcher *parser.Dispatcher, logger *log.Logger, maxFileSize int64, version string) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		dispatcher:  dispatcher,
		logger:      logger,
		maxFileSize: maxFileSize,
		version:     version,
	}
}

// NewApp returns a fiber app with the API routes and middleware installed.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "card-statement-parser",
		DisableStartupMessage: true,
		// Leave room for the multipart envelope around the file.
		BodyLimit: int(h.maxFileSize) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return writeError(c, code, err.Error(), "")
		},
	})
	app.Use(recover.New())
	app.Use(h.requestID)
	app.Use(cors.New(cors.Config{
		AllowMethods:  "GET,POST,OPTIONS",
		ExposeHeaders: RequestIDHeader,
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/parse", h.HandleParse)
}

// requestID tags each request with a UUID, reusing a client-supplied one,
// and logs the outcome.
func (h *Handler) requestID(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Locals(localRequestID, id)
	c.Set(RequestIDHeader, id)

	start := time.Now()
	err := c.Next()
	h.logger.Debug("request",
		"id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"took", time.Since(start),
	)
	return err
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.version,
	})
}

// HandleParse accepts a multipart upload in field "file" with an optional
// "password", or already-extracted text in field "text".
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	resp := ParseResponse{RequestID: requestIDOf(c)}

	text := c.FormValue("text")
	if text == "" {
		header, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file' or 'text'.", "")
		}
		resp.FileName = header.Filename
		if h.maxFileSize > 0 && header.Size > h.maxFileSize {
			return writeError(c, fiber.StatusRequestEntityTooLarge,
				fmt.Sprintf("File is %d bytes; the limit is %d.", header.Size, h.maxFileSize), "")
		}

		f, err := header.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.", "")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.", "")
		}
		if !extractor.IsPDF(data) {
			return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.", "")
		}

		text, err = extractor.ExtractText(data, c.FormValue("password"))
		if err != nil {
			status, kind := statusFor(err)
			h.logger.Warn("extraction failed", "id", resp.RequestID, "file", header.Filename, "kind", kind, "err", err)
			return writeError(c, status, err.Error(), kind)
		}
	}

	fields := h.dispatcher.ClassifyAndExtract(text)
	h.logger.Info("parsed statement", "id", resp.RequestID, "issuer", fields.Issuer)

	resp.Success = true
	resp.Statement = &fields
	if c.FormValue("debug") == "true" {
		resp.RawText = text
	}
	return c.JSON(resp)
}

// statusFor maps an extractor error to an HTTP status and error kind.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, extractor.ErrCredential):
		return fiber.StatusUnauthorized, extractor.KindCredential.String()
	case errors.Is(err, extractor.ErrMalformed):
		return fiber.StatusUnprocessableEntity, extractor.KindMalformed.String()
	default:
		return fiber.StatusInternalServerError, ""
	}
}

func requestIDOf(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

func writeError(c *fiber.Ctx, status int, msg, kind string) error {
	return c.Status(status).JSON(ParseResponse{
		Success:   false,
		RequestID: requestIDOf(c),
		Error:     msg,
		ErrorKind: kind,
	})
}
