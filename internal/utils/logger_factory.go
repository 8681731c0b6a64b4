package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel enumerates the supported diagnostic log levels.
type LogLevel string

// LogFormat enumerates the supported diagnostic log encodings.
type LogFormat string

const (
	// LogLevelDebug enables debug diagnostics.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo enables informational diagnostics.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn enables warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError enables errors only.
	LogLevelError LogLevel = "error"

	// LogFormatStructured emits JSON diagnostics and suppresses console messages.
	LogFormatStructured LogFormat = "structured"
	// LogFormatConsole emits human-readable diagnostics and console messages.
	LogFormatConsole LogFormat = "console"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
	consoleMessageKeyConstant            = "message"
	consoleLevelKeyConstant              = "level"
)

// LoggerOutputs groups the loggers produced for a command invocation.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers writing to standard error.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{}
}

// CreateLoggerOutputs builds the diagnostic and console loggers for the requested level and format.
func (factory LoggerFactory) CreateLoggerOutputs(logLevel LogLevel, logFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := parseLogLevel(logLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	standardError := zapcore.Lock(os.Stderr)

	switch LogFormat(strings.ToLower(strings.TrimSpace(string(logFormat)))) {
	case LogFormatStructured:
		encoderConfiguration := zap.NewProductionEncoderConfig()
		encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
		diagnosticCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfiguration), standardError, zapLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.NewNop(),
		}, nil
	case LogFormatConsole:
		encoderConfiguration := zap.NewDevelopmentEncoderConfig()
		encoderConfiguration.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
		diagnosticCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfiguration), standardError, zapLevel)

		consoleEncoderConfiguration := zapcore.EncoderConfig{
			LevelKey:       consoleLevelKeyConstant,
			MessageKey:     consoleMessageKeyConstant,
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfiguration), standardError, zapLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.New(consoleCore),
		}, nil
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, logFormat)
	}
}

func parseLogLevel(logLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(logLevel)))) {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, logLevel)
	}
}
