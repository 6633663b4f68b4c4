package ssdp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

const multicastAddr = "239.255.255.250:1900"

type Server struct {
	ip     string
	port   int
	udn    string
	logger *slog.Logger
}

// NewServer answers M-SEARCH requests so Hue clients find the bridge at
// http://ip:port/description.xml.
func NewServer(ip string, port int, udn string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{ip: ip, port: port, udn: udn, logger: logger.With("component", "ssdp")}
}

// Start listens on the SSDP multicast group until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp4", multicastAddr)
	if err != nil {
		return err
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	s.logger.Info("ssdp listening", "addr", multicastAddr, "location", s.location())

	buf := make([]byte, 1024)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Debug("ssdp read failed", "error", err)
			continue
		}

		if st, ok := Matches(string(buf[:n])); ok {
			s.respond(src, st)
		}
	}
}

// Matches reports whether msg is an M-SEARCH the bridge should answer, and
// which search target to echo back.
func Matches(msg string) (string, bool) {
	if !strings.Contains(msg, "M-SEARCH") {
		return "", false
	}
	lower := strings.ToLower(msg)
	switch {
	// Echo devices search for the basic device type or the root device.
	case strings.Contains(lower, "urn:schemas-upnp-org:device:basic:1"):
		return "urn:schemas-upnp-org:device:basic:1", true
	case strings.Contains(lower, "upnp:rootdevice"):
		return "upnp:rootdevice", true
	case strings.Contains(lower, "ssdp:all"):
		return "urn:schemas-upnp-org:device:basic:1", true
	}
	return "", false
}

func (s *Server) location() string {
	return fmt.Sprintf("http://%s:%d/description.xml", s.ip, s.port)
}

// Response builds the unicast answer for search target st.
func (s *Server) Response(st string) string {
	return fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"CACHE-CONTROL: max-age=100\r\n"+
		"EXT:\r\n"+
		"LOCATION: %s\r\n"+
		"SERVER: FreeRTOS/6.0.5, UPnP/1.1, IpBridge/1.17.0\r\n"+
		"ST: %s\r\n"+
		"USN: uuid:%s::%s\r\n\r\n", s.location(), st, s.udn, st)
}

func (s *Server) respond(dest *net.UDPAddr, st string) {
	conn, err := net.DialUDP("udp4", nil, dest)
	if err != nil {
		s.logger.Debug("ssdp dial failed", "dest", dest.String(), "error", err)
		return
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(s.Response(st))); err != nil {
		s.logger.Debug("ssdp write failed", "dest", dest.String(), "error", err)
	}
}
