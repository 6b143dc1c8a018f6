package main

import (
	"github.com/oparinlab/protocell/internal/chem"
	"github.com/oparinlab/protocell/internal/chem/notifiers"
)

// chemLoggerAdapter adapts the server's Logger to the chem.Logger interface
type chemLoggerAdapter struct {
	logger *Logger
}

func (a *chemLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *chemLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *chemLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *chemLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// Server hosts the simulation manager, the shared event bus, and the
// websocket stream behind the HTTP API.
type Server struct {
	manager            *chem.NetworkManager
	notifierMgr        *chem.NotificationManager
	wsNotifier         *notifiers.WebSocketNotifier
	metrics            *serverMetrics
	snapshotDir        string
	snapshotEverySteps int
	logger             *Logger
}

// NewServer creates a new server instance. The websocket notifier is
// pre-registered on the shared notification manager so /ws clients see every
// lifecycle event.
func NewServer(logger *Logger) *Server {
	chemLogger := &chemLoggerAdapter{logger: logger}
	notifierMgr := chem.NewNotificationManagerWithLogger(chemLogger)
	wsNotifier := notifiers.NewWebSocketNotifier("server-websocket")
	if err := notifierMgr.RegisterNotifier(wsNotifier); err != nil {
		logger.Errorf("Failed to register websocket notifier: %v", err)
	}

	return &Server{
		manager:     chem.NewNetworkManagerWithLogger(chemLogger),
		notifierMgr: notifierMgr,
		wsNotifier:  wsNotifier,
		metrics:     newServerMetrics(),
		logger:      logger,
	}
}

// SetSnapshotDir sets the snapshot directory applied to new simulations
func (s *Server) SetSnapshotDir(dir string) {
	s.snapshotDir = dir
}

// SetSnapshotEverySteps sets the snapshot frequency applied to new simulations
func (s *Server) SetSnapshotEverySteps(steps int) {
	s.snapshotEverySteps = steps
}
