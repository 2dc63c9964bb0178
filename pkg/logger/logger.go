package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with storefront-specific helpers
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// FromSlog wraps an existing slog.Logger
func FromSlog(l *slog.Logger) *Logger {
	return &Logger{Logger: l}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithHolderID adds the shopping-session holder ID to logger context
func (l *Logger) WithHolderID(holderID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("holder_id", holderID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Reservation lifecycle logging

// LogReservationCreated logs a successful stock hold
func (l *Logger) LogReservationCreated(ctx context.Context, reservationID, bookID, holderID string, quantity int) {
	l.Logger.InfoContext(ctx,
		"Reservation Created",
		slog.String("reservation_id", reservationID),
		slog.String("book_id", bookID),
		slog.String("holder_id", holderID),
		slog.Int("quantity", quantity),
	)
}

// LogReservationReleased logs a hold returned to the pool
func (l *Logger) LogReservationReleased(ctx context.Context, reservationID, bookID string, quantity int, reason string) {
	l.Logger.InfoContext(ctx,
		"Reservation Released",
		slog.String("reservation_id", reservationID),
		slog.String("book_id", bookID),
		slog.Int("quantity", quantity),
		slog.String("reason", reason),
	)
}

// LogPurchaseConfirmed logs a reservation converted to a permanent decrement
func (l *Logger) LogPurchaseConfirmed(ctx context.Context, reservationID, bookID string, quantity int) {
	l.Logger.InfoContext(ctx,
		"Purchase Confirmed",
		slog.String("reservation_id", reservationID),
		slog.String("book_id", bookID),
		slog.Int("quantity", quantity),
	)
}

// LogInventoryDegraded logs an operation that fell back to the degraded-mode policy
func (l *Logger) LogInventoryDegraded(ctx context.Context, operation, bookID string, err error) {
	l.Logger.WarnContext(ctx,
		"Inventory Degraded Mode",
		slog.String("operation", operation),
		slog.String("book_id", bookID),
		slog.String("error", err.Error()),
	)
}

// LogOrderPlaced logs a completed checkout
func (l *Logger) LogOrderPlaced(ctx context.Context, orderID, orderRef, holderID string, total float64) {
	l.Logger.InfoContext(ctx,
		"Order Placed",
		slog.String("order_id", orderID),
		slog.String("order_ref", orderRef),
		slog.String("holder_id", holderID),
		slog.Float64("total", total),
	)
}

// Security logging

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
