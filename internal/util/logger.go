package util

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var (
	ErrLogNotInitialized      = errors.New("log object is not initialized yet")
	LOG_FOLDER_NAME_WITH_PATH = "log"
	globalLogLevel            = 3
)

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

// AgentLogger buffers log lines through a channel and writes them to a file
// via zap. The zero value is safe to pass around; LogEvent on an
// uninitialized logger returns ErrLogNotInitialized instead of blocking.
type AgentLogger struct {
	logBuffer         chan leveledEntry
	handle            *os.File
	wg                *sync.WaitGroup
	loggerInitialized bool
	zapLogger         *zap.Logger
}

type leveledEntry struct {
	level  int
	logMsg string
}

func (a *AgentLogger) Init(logFileName string, rewrite bool) error {
	a.wg = new(sync.WaitGroup)
	a.logBuffer = make(chan leveledEntry, LOG_BUFFER_SIZE)

	fileWithRelPath := LOG_FOLDER_NAME_WITH_PATH + string(os.PathSeparator) + logFileName

	flags := os.O_RDWR | os.O_CREATE | os.O_APPEND
	if rewrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	handle, err := os.OpenFile(fileWithRelPath, flags, 0666)
	if err != nil {
		return err
	}
	a.handle = handle

	a.zapLoggerInit()

	a.wg.Add(1)
	go a.logWriter()

	a.loggerInitialized = true
	return nil
}

func (a *AgentLogger) zapLoggerInit() {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	fileEncoder := zapcore.NewConsoleEncoder(config)

	writer := zapcore.AddSync(a.handle)

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, writer, GlobalLogLevelSetter()),
	)
	a.zapLogger = zap.New(core)
	defer a.zapLogger.Sync()
}

func GlobalLogLevelSetter() zapcore.Level {
	switch globalLogLevel {
	case LOG_LEVEL_ERROR:
		return zapcore.ErrorLevel
	case LOG_LEVEL_WARN:
		return zapcore.WarnLevel
	case LOG_LEVEL_DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (a *AgentLogger) logWriter() {
	for entry := range a.logBuffer {
		switch entry.level {
		case LOG_LEVEL_ERROR:
			a.zapLogger.Error(entry.logMsg)
		case LOG_LEVEL_WARN:
			a.zapLogger.Warn(entry.logMsg)
		case LOG_LEVEL_DEBUG:
			a.zapLogger.Debug(entry.logMsg)
		default:
			a.zapLogger.Info(entry.logMsg)
		}
	}
	a.wg.Done()
}

// LogEvent accepts an optional leading level constant followed by the message
// parts. A single argument logs at INFO.
func (a *AgentLogger) LogEvent(v ...interface{}) error {
	var msg string
	level := LOG_LEVEL_INFO

	if len(v) == 1 {
		msg = fmt.Sprint(v[0])
	} else if len(v) > 1 {
		if lvl, ok := v[0].(int); ok && lvl >= LOG_LEVEL_ERROR && lvl <= LOG_LEVEL_DEBUG {
			level = lvl
			msg = fmt.Sprintf("%v", v[1:])
		} else {
			msg = fmt.Sprintf("%v", v)
		}
		msg = msg[1 : len(msg)-1]
	}

	if !a.loggerInitialized {
		return ErrLogNotInitialized
	}
	a.logBuffer <- leveledEntry{level, msg}
	return nil
}

func (a *AgentLogger) DeInit() {
	if !a.loggerInitialized {
		return
	}
	a.loggerInitialized = false
	close(a.logBuffer)
	a.wg.Wait()

	a.handle.Close()
}

func SetCommonLoggerAttributes(GlobalLogLevel int) {
	globalLogLevel = GlobalLogLevel
}

func SetLoggerPath(logPath string) {
	LOG_FOLDER_NAME_WITH_PATH = logPath
}

func CheckAndCreateLogFolder(FolderNameWithPath string) {
	_, err := os.Stat(FolderNameWithPath)

	if os.IsNotExist(err) {
		err := os.MkdirAll(FolderNameWithPath, 0755)
		if err != nil {
			fmt.Println("Failed to create the log folder and Mkdir err :: ", err)
		}
	}
}
