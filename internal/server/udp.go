package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/atomic"

	"github.com/skypro1111/vmc-keymap/internal/config"
	"github.com/skypro1111/vmc-keymap/internal/keyboard"
	"github.com/skypro1111/vmc-keymap/internal/metrics"
	"github.com/skypro1111/vmc-keymap/internal/source"
	"github.com/skypro1111/vmc-keymap/internal/vmc"
)

// PacketHandler decodes one datagram and fires its actions
type PacketHandler interface {
	HandlePacket(ctx context.Context, data []byte) (vmc.Result, error)
}

// UDPServer receives OSC datagrams from VMC senders
type UDPServer struct {
	conn    *net.UDPConn
	config  *config.ServerConfig
	logger  *slog.Logger
	handler PacketHandler
	sources *source.Tracker
	metrics *metrics.Metrics

	// Concurrency management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	packetChan chan *incomingPacket

	packetsReceived  atomic.Uint64
	packetsProcessed atomic.Uint64
	packetsDropped   atomic.Uint64
	parseErrors      atomic.Uint64
	keyPresses       atomic.Uint64
}

// incomingPacket represents a received UDP packet with metadata
type incomingPacket struct {
	data       []byte
	remoteAddr *net.UDPAddr
	timestamp  time.Time
}

// NewUDPServer creates a new UDP server instance
func NewUDPServer(cfg *config.ServerConfig, logger *slog.Logger, handler PacketHandler,
	sources *source.Tracker, m *metrics.Metrics) *UDPServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &UDPServer{
		config:     cfg,
		logger:     logger,
		handler:    handler,
		sources:    sources,
		metrics:    m,
		ctx:        ctx,
		cancel:     cancel,
		packetChan: make(chan *incomingPacket, cfg.QueueSize),
	}
}

// Start begins listening for UDP packets
func (s *UDPServer) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.config.Address())
	if err != nil {
		return errors.Wrap(err, "resolve UDP address")
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return errors.Wrap(err, "listen on UDP")
	}

	s.conn = conn

	if err := s.conn.SetReadBuffer(s.config.BufferSize); err != nil {
		s.logger.Warn("Failed to set UDP read buffer size",
			slog.Int("buffer_size", s.config.BufferSize),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("UDP server started",
		slog.String("address", s.conn.LocalAddr().String()),
		slog.Int("buffer_size", s.config.BufferSize),
		slog.Int("workers", s.config.Workers),
	)

	// A single worker keeps key presses in arrival order.
	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.packetProcessor(i)
	}

	s.wg.Add(1)
	go s.receiveLoop()

	return nil
}

// LocalAddr returns the bound address, nil before Start
func (s *UDPServer) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Stop gracefully stops the UDP server
func (s *UDPServer) Stop() error {
	s.logger.Info("Stopping UDP server...")

	s.cancel()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing UDP connection", slog.String("error", err.Error()))
		}
	}

	// The receive loop closes packetChan on exit, which drains the workers.
	s.wg.Wait()

	stats := s.GetStatistics()
	s.logger.Info("UDP server stopped",
		slog.Uint64("packets_received", stats.PacketsReceived),
		slog.Uint64("packets_processed", stats.PacketsProcessed),
		slog.Uint64("parse_errors", stats.ParseErrors),
	)

	return nil
}

// receiveLoop is the main packet receiving loop
func (s *UDPServer) receiveLoop() {
	defer s.wg.Done()
	defer close(s.packetChan)

	buffer := make([]byte, s.config.BufferSize)

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Receive loop stopping due to context cancellation")
			return
		default:
		}

		// Periodic deadline so cancellation is noticed
		if err := s.conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			s.logger.Error("Failed to set read deadline", slog.String("error", err.Error()))
			continue
		}

		n, remoteAddr, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Error("Failed to read UDP packet", slog.String("error", err.Error()))
				continue
			}
		}

		s.packetsReceived.Inc()
		s.metrics.RecordPacketReceived(n)

		// The receive buffer is reused; decoded views must outlive it.
		packetData := make([]byte, n)
		copy(packetData, buffer[:n])

		packet := &incomingPacket{
			data:       packetData,
			remoteAddr: remoteAddr,
			timestamp:  time.Now(),
		}

		select {
		case s.packetChan <- packet:
			s.metrics.SetQueueSize(len(s.packetChan))
		default:
			s.packetsDropped.Inc()
			s.metrics.RecordPacketDropped()
			s.logger.Warn("Packet processing queue full, dropping packet",
				slog.String("remote_addr", remoteAddr.String()),
				slog.Int("packet_size", n),
			)
		}
	}
}

// packetProcessor processes packets from the packet channel
func (s *UDPServer) packetProcessor(workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Packet processor started", slog.Int("worker_id", workerID))

	for packet := range s.packetChan {
		s.handlePacket(packet, workerID)
	}

	s.logger.Debug("Packet processor stopped", slog.Int("worker_id", workerID))
}

// handlePacket decodes a single datagram and dispatches its messages.
// Malformed packets are dropped: OSC over UDP has no way to NACK the sender.
func (s *UDPServer) handlePacket(packet *incomingPacket, workerID int) {
	res, err := s.handler.HandlePacket(s.ctx, packet.data)

	remote := packet.remoteAddr.String()
	s.sources.Record(remote, source.Observation{
		ParseError: err != nil,
		KeyPresses: len(res.Keys),
		Timestamp:  res.Timestamp,
	})
	s.metrics.SetActiveSources(s.sources.Count())
	s.keyPresses.Add(uint64(len(res.Keys) - res.Failed))

	if err != nil {
		s.parseErrors.Inc()
		s.metrics.RecordParseError()
		s.metrics.RecordMessages(res.Kind.String(), res.Messages, res.Matched, res.Ignored)

		s.logger.Debug("Dropping malformed packet",
			slog.String("remote_addr", remote),
			slog.Int("packet_size", len(packet.data)),
			slog.Int("messages_before_error", res.Messages),
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
		)
		return
	}

	s.packetsProcessed.Inc()
	s.metrics.RecordPacketProcessed(res.Kind.String(), res.Messages, res.Matched, res.Ignored)

	if len(res.Keys) > 0 {
		s.logger.Debug("Packet processed",
			slog.String("remote_addr", remote),
			slog.String("packet_kind", res.Kind.String()),
			slog.Int("messages", res.Messages),
			slog.Int("key_presses", len(res.Keys)),
			slog.Duration("latency", time.Since(packet.timestamp)),
			slog.Int("worker_id", workerID),
		)
	}
}

// GetStatistics returns current server statistics
func (s *UDPServer) GetStatistics() ServerStatistics {
	return ServerStatistics{
		PacketsReceived:  s.packetsReceived.Load(),
		PacketsProcessed: s.packetsProcessed.Load(),
		PacketsDropped:   s.packetsDropped.Load(),
		ParseErrors:      s.parseErrors.Load(),
		KeyPresses:       s.keyPresses.Load(),
		ActiveSources:    uint64(s.sources.Count()),
		QueueSize:        uint64(len(s.packetChan)),
		QueueCapacity:    uint64(cap(s.packetChan)),
	}
}

// ServerStatistics represents server performance metrics
type ServerStatistics struct {
	PacketsReceived  uint64 `json:"packets_received"`
	PacketsProcessed uint64 `json:"packets_processed"`
	PacketsDropped   uint64 `json:"packets_dropped"`
	ParseErrors      uint64 `json:"parse_errors"`
	KeyPresses       uint64 `json:"key_presses"`
	ActiveSources    uint64 `json:"active_sources"`
	QueueSize        uint64 `json:"queue_size"`
	QueueCapacity    uint64 `json:"queue_capacity"`
}

// MeteredAction wraps a key injector with press counters
type MeteredAction struct {
	next    keyboard.Injector
	metrics *metrics.Metrics
}

// NewMeteredAction wraps next so every press is counted by key
func NewMeteredAction(next keyboard.Injector, m *metrics.Metrics) *MeteredAction {
	return &MeteredAction{next: next, metrics: m}
}

// Press forwards to the wrapped injector and records the outcome
func (a *MeteredAction) Press(ctx context.Context, key keyboard.Key) error {
	if err := a.next.Press(ctx, key); err != nil {
		a.metrics.RecordKeyPressFailure(key.String())
		return err
	}
	a.metrics.RecordKeyPress(key.String())
	return nil
}
