package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mqtools/mq/command"
	"github.com/mqtools/mq/conf"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var executeFunc = command.Execute

// invocationHook tags every log entry with the id of the current run.
type invocationHook struct {
	id string
}

func (h *invocationHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *invocationHook) Fire(entry *logrus.Entry) error {
	entry.Data["invocation"] = h.id
	return nil
}

func main() {

	logrus.SetFormatter(conf.PrepareLogFormat())

	logger := &lumberjack.Logger{
		Filename:  conf.LogFilepath(),
		MaxSize:   1,  // MB
		MaxAge:    10, // Days
		LocalTime: true,
	}

	logrus.SetOutput(io.MultiWriter(os.Stderr, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx)
	stop()
	logger.Close()

	os.Exit(code)
}

func run(ctx context.Context) int {
	invocationId := uuid.New().String()
	logrus.AddHook(&invocationHook{id: invocationId})

	err := executeFunc(ctx, invocationId)
	if err != nil {
		logrus.Errorln(err)
		return 1
	}
	return 0
}
