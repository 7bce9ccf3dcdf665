package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Format represents the log output format
type Format int

const (
	Text Format = iota
	JSON
)

// Logger handles structured logging
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  Level
	Format Format
}

// Subscription identifies an Azure subscription in log output
type Subscription struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	defaultLogger = &Logger{
		out:    os.Stdout,
		level:  INFO,
		format: Text,
	}

	// Color definitions
	debugColor = color.New(color.FgCyan)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

// Configure sets up the default logger
func Configure(config LogConfig) {
	defaultLogger.level = config.Level
	defaultLogger.format = config.Format
}

type logEntry struct {
	Timestamp string      `json:"timestamp"`
	Level     string      `json:"level"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

func (l *Logger) log(level Level, msg string, data interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006/01/02 15:04:05")

	if l.format == JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   msg,
			Data:      data,
		}
		if err := json.NewEncoder(l.out).Encode(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode log entry: %v\n", err)
		}
		return
	}

	// Text format
	var levelColor *color.Color
	switch level {
	case DEBUG:
		levelColor = debugColor
	case INFO:
		levelColor = infoColor
	case WARN:
		levelColor = warnColor
	case ERROR:
		levelColor = errorColor
	default:
		levelColor = infoColor
	}

	levelStr := levelColor.Sprintf("%-5s", level.String())
	fmt.Fprintf(l.out, "%s %s: %s", timestamp, levelStr, msg)
	if data != nil {
		fmt.Fprintf(l.out, " %+v", data)
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Debug(msg string, data ...interface{}) {
	l.log(DEBUG, msg, firstOrNil(data))
}

func (l *Logger) Info(msg string, data ...interface{}) {
	l.log(INFO, msg, firstOrNil(data))
}

func (l *Logger) Warn(msg string, data ...interface{}) {
	l.log(WARN, msg, firstOrNil(data))
}

func (l *Logger) Error(msg string, err error, data ...interface{}) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.log(ERROR, msg, firstOrNil(data))
}

// firstOrNil returns the first element of data if present, nil otherwise
func firstOrNil(data []interface{}) interface{} {
	if len(data) > 0 {
		return data[0]
	}
	return nil
}

// ScanStart logs the start of a scan operation
func (l *Logger) ScanStart(detectors []string, subscriptions []Subscription) {
	data := map[string]interface{}{
		"detectors":     detectors,
		"subscriptions": subscriptions,
	}
	l.Info("Starting scan operation", data)
}

// SubscriptionStart logs the start of resource evaluation for a subscription
func (l *Logger) SubscriptionStart(subscriptionID, subscriptionName string) {
	data := map[string]interface{}{
		"subscription_id":   subscriptionID,
		"subscription_name": subscriptionName,
	}
	l.Info("Analyzing subscription", data)
}

// SubscriptionComplete logs the completion of a subscription's evaluation
func (l *Logger) SubscriptionComplete(subscriptionID, subscriptionName string, total, flagged int) {
	data := map[string]interface{}{
		"subscription_id":   subscriptionID,
		"subscription_name": subscriptionName,
		"resource_count":    total,
		"flagged_count":     flagged,
	}
	l.Info("Subscription analysis complete", data)
}

// SubscriptionError logs a per-subscription failure that the run survives
func (l *Logger) SubscriptionError(subscriptionID, subscriptionName string, err error) {
	data := map[string]interface{}{
		"subscription_id":   subscriptionID,
		"subscription_name": subscriptionName,
	}
	msg := "Skipping subscription"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.log(WARN, msg, data)
}

// ScanComplete logs the completion of a scan operation
func (l *Logger) ScanComplete(totalResources, totalFlagged int) {
	data := map[string]interface{}{
		"total_resources": totalResources,
		"total_flagged":   totalFlagged,
	}
	l.Info("Scan operation complete", data)
}

// Default logger methods
func Debug(msg string, data ...interface{}) {
	defaultLogger.Debug(msg, data...)
}

func Info(msg string, data ...interface{}) {
	defaultLogger.Info(msg, data...)
}

func Warn(msg string, data ...interface{}) {
	defaultLogger.Warn(msg, data...)
}

func Error(msg string, err error, data ...interface{}) {
	defaultLogger.Error(msg, err, data...)
}

func ScanStart(detectors []string, subscriptions []Subscription) {
	defaultLogger.ScanStart(detectors, subscriptions)
}

func SubscriptionStart(subscriptionID, subscriptionName string) {
	defaultLogger.SubscriptionStart(subscriptionID, subscriptionName)
}

func SubscriptionComplete(subscriptionID, subscriptionName string, total, flagged int) {
	defaultLogger.SubscriptionComplete(subscriptionID, subscriptionName, total, flagged)
}

func SubscriptionError(subscriptionID, subscriptionName string, err error) {
	defaultLogger.SubscriptionError(subscriptionID, subscriptionName, err)
}

func ScanComplete(totalResources, totalFlagged int) {
	defaultLogger.ScanComplete(totalResources, totalFlagged)
}
