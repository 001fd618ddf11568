package main

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Server owns the listener, the shared keyspace, and the ambient
// logging/metrics wiring, mirroring the teacher's GoFastServer fields minus
// the binary-protocol statistics it tracked directly — those are now
// reported through Metrics instead.
type Server struct {
	config  *Config
	store   *Keyspace
	metrics *Metrics
	log     *logrus.Logger

	listener net.Listener

	mu      sync.Mutex
	running bool
	conns   map[net.Conn]struct{}
}

func NewServer(cfg *Config, log *logrus.Logger, metrics *Metrics) *Server {
	return &Server{
		config:  cfg,
		store:   NewKeyspace(),
		metrics: metrics,
		log:     log,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and runs the accept loop, spawning one goroutine
// per connection just as the teacher's Start does.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return err
	}
	s.listener = ln

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.log.WithField("addr", s.config.Addr()).Info("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := !s.running
			s.mu.Unlock()
			if stopped {
				return nil
			}
			s.log.WithError(err).Warn("accept failed")
			continue
		}
		s.trackConn(conn)
		go s.handleConnection(conn)
	}
}

func (s *Server) Stop() error {
	s.mu.Lock()
	s.running = false
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) trackConn(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	s.metrics.ConnectionOpened()
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.metrics.ConnectionClosed()
}

// handleConnection runs the Reading -> Dispatching -> Writing -> Reading
// loop for one client: read available bytes, decode as many complete
// commands as the buffer holds, execute and reply to each in order, then
// block on the next read. The unconsumed tail of a partial command is
// retained and prepended to the next read, matching the codec's partial/
// pipelined decode contract.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.untrackConn(conn)
	defer conn.Close()

	instrumented := WrapConn(conn, s.metrics)

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(s.config.TCPKeepAlive)
	}

	var pending []byte
	buf := make([]byte, 64*1024)

	for {
		if s.config.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}

		n, err := instrumented.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)

			values, consumed, decodeErr := Decode(pending)
			pending = append([]byte(nil), pending[consumed:]...)

			for _, v := range values {
				reply := s.dispatch(v)
				s.writeReply(instrumented, reply)
			}

			if decodeErr != nil {
				s.writeReply(instrumented, ErrorValue("ERR Protocol error: "+decodeErr.Error()))
				// Decode has no notion of resyncing past malformed input, so
				// the only safe recovery is to drop whatever's left of this
				// read and wait for the client to send a fresh command.
				pending = nil
				continue
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) dispatch(v Value) Value {
	cmd, err := ParseCommand(v)
	if err != nil {
		s.metrics.ObserveCommand("unknown", true)
		return ErrorValue(err.Error())
	}

	reply := Execute(cmd, s.store, nowMS)
	s.metrics.ObserveCommand(commandName(cmd.Kind), reply.Kind == KindError)
	s.log.WithField("command", commandName(cmd.Kind)).Debug("executed")
	return reply
}

func (s *Server) writeReply(conn *InstrumentedConn, v Value) {
	if s.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	_, _ = conn.Write(Encode(v))
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}

func commandName(k CommandKind) string {
	names := map[CommandKind]string{
		CmdPing: "PING", CmdEcho: "ECHO", CmdGet: "GET", CmdSet: "SET",
		CmdRPush: "RPUSH", CmdLPush: "LPUSH", CmdLRange: "LRANGE", CmdLLen: "LLEN",
		CmdLPop: "LPOP", CmdBLPop: "BLPOP", CmdZAdd: "ZADD", CmdZRank: "ZRANK",
		CmdZRange: "ZRANGE", CmdZCard: "ZCARD", CmdZScore: "ZSCORE", CmdZRem: "ZREM",
		CmdType: "TYPE", CmdDel: "DEL", CmdExists: "EXISTS", CmdXAdd: "XADD", CmdXLen: "XLEN",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "UNKNOWN"
}
