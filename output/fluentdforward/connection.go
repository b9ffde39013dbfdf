package fluentdforward

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/util"
	"github.com/vmihailenco/msgpack/v4"
)

// forwardConnection is an authenticated connection to upstream
type forwardConnection struct {
	logger  logger.Logger
	socket  net.Conn
	decoder *msgpack.Decoder
}

func openForwardConnection(parentLogger logger.Logger, config UpstreamConfig) (*forwardConnection, error) {
	connLogger := parentLogger.WithField(defs.LabelServer, config.Address)

	sock, connErr := connect(connLogger, config.TLS, config.Address)
	if connErr != nil {
		return nil, fmt.Errorf("failed to connect: %w", connErr)
	}
	connLogger.Info("connected to ", sock.RemoteAddr())

	if len(config.Secret) > 0 {
		success, reason, herr := forwardprotocol.DoClientHandshake(sock, config.Secret, defs.ForwarderHandshakeTimeout)
		if herr != nil {
			closeSocket(connLogger, sock)
			return nil, fmt.Errorf("failed to handshake due to error: %w", herr)
		}
		if !success {
			closeSocket(connLogger, sock)
			return nil, fmt.Errorf("failed to handshake due to authentication: %s", reason)
		}
	}

	return &forwardConnection{
		logger:  connLogger,
		socket:  sock,
		decoder: msgpack.NewDecoder(sock),
	}, nil
}

func connect(connLogger logger.Logger, useTLS bool, address string) (net.Conn, error) {
	if useTLS {
		connLogger.Infof("connecting to %s in TLS mode", address)
		dialer := &net.Dialer{}
		dialer.Timeout = defs.ForwarderConnectionTimeout
		dialer.Deadline = time.Now().Add(defs.ForwarderConnectionTimeout)
		tlsConfig := &tls.Config{} //nolint:gosec // upstream certs aren't verified
		tlsConfig.InsecureSkipVerify = true
		return tls.DialWithDialer(dialer, "tcp", address, tlsConfig)
	}
	connLogger.Infof("connecting to %s in TCP mode", address)
	return net.DialTimeout("tcp", address, defs.ForwarderConnectionTimeout)
}

// SendMessage writes the message and waits for the ACK of given chunk ID
func (fconn *forwardConnection) SendMessage(message []byte, chunkID string) error {
	if err := fconn.socket.SetWriteDeadline(time.Now().Add(defs.ForwarderBatchSendTimeout)); err != nil {
		return fmt.Errorf("failed to set write timeout: %w", err)
	}
	if err := writeAll(fconn.socket, message); err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}

	if err := fconn.socket.SetReadDeadline(time.Now().Add(defs.ForwarderBatchAckTimeout)); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	ack := forwardprotocol.Ack{}
	if err := fconn.decoder.Decode(&ack); err != nil {
		return fmt.Errorf("failed to read ACK: %w", err)
	}
	if ack.Ack != chunkID {
		return fmt.Errorf("received unknown ACK '%s', expecting '%s'", ack.Ack, chunkID)
	}
	return nil
}

// Close closes the socket, ignoring errors of already closed connection
func (fconn *forwardConnection) Close() {
	closeSocket(fconn.logger, fconn.socket)
}

func closeSocket(connLogger logger.Logger, sock net.Conn) {
	if err := sock.Close(); err != nil && !util.IsNetworkClosed(err) {
		connLogger.Warn("error closing connection: ", err)
	}
}

func writeAll(conn net.Conn, data []byte) error {
	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
