// Package tcpsource reads raw log streams from TCP connections, e.g. a logcat stream exposed by "adb forward"
package tcpsource

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/util"
)

// Config defines a source of TCP client connection
type Config struct {
	bconfig.Header `yaml:",inline"`
	Address        string `yaml:"address"`
	TLS            bool   `yaml:"tls"`
}

type tcpSource struct {
	logger  logger.Logger
	address string
	useTLS  bool
}

type tcpStream struct {
	net.Conn
	logger logger.Logger
}

// VerifyConfig checks the address
func (cfg *Config) VerifyConfig() error {
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return fmt.Errorf(".address: %w", err)
	}
	return nil
}

// NewSource creates the TCP source
func (cfg *Config) NewSource(parentLogger logger.Logger) (base.LogSource, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	return NewSource(parentLogger, cfg.Address, cfg.TLS), nil
}

// NewSource creates a LogSource which connects to the address on Open
func NewSource(parentLogger logger.Logger, address string, useTLS bool) base.LogSource {
	return &tcpSource{
		logger:  parentLogger.WithFields(logger.Fields{defs.LabelComponent: "TCPSource", defs.LabelRemote: address}),
		address: address,
		useTLS:  useTLS,
	}
}

func (src *tcpSource) Open() (io.ReadCloser, error) {
	var conn net.Conn
	var err error

	if src.useTLS {
		src.logger.Infof("connecting to %s in TLS mode", src.address)
		dialer := &net.Dialer{}
		dialer.Timeout = defs.SourceConnectionTimeout
		dialer.Deadline = time.Now().Add(defs.SourceConnectionTimeout)
		tlsConfig := &tls.Config{} //nolint:gosec // device bridges use self-signed certs
		tlsConfig.InsecureSkipVerify = true
		conn, err = tls.DialWithDialer(dialer, "tcp", src.address, tlsConfig)
	} else {
		src.logger.Infof("connecting to %s in TCP mode", src.address)
		conn, err = net.DialTimeout("tcp", src.address, defs.SourceConnectionTimeout)
	}
	if err != nil {
		return nil, err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if size, berr := util.TrySetTCPReadBuffer(tcpConn, defs.SourceTCPReadBufferMax, defs.SourceTCPReadBufferMin); berr != nil {
			src.logger.Warnf("failed to set read buffer: %s", berr.Error())
		} else {
			src.logger.Debugf("set read buffer to %d bytes", size)
		}
	}
	src.logger.Info("connected from ", conn.LocalAddr())
	return &tcpStream{Conn: conn, logger: src.logger}, nil
}

func (src *tcpSource) String() string {
	return "tcp://" + src.address
}

func (stream *tcpStream) Close() error {
	if err := stream.Conn.Close(); err != nil && !util.IsNetworkClosed(err) {
		return err
	}
	stream.logger.Info("disconnected")
	return nil
}
