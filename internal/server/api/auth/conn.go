package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Each record is: length uint32 BE | nonce[12] | ciphertext. The nonce is a
// per-direction counter.
const (
	maxRecordSize = 2 * 1024 * 1024
	nonceSize     = chacha20poly1305.NonceSize
)

var errBadRecord = errors.New("malformed encrypted record")

// Conn encrypts everything written to and decrypts everything read from the
// wrapped connection.
type Conn struct {
	net.Conn
	aead cipher.AEAD

	wmu     sync.Mutex
	sendCtr uint64

	rmu     sync.Mutex
	recvBuf bytes.Buffer
}

// WrapConn returns conn wrapped with a session key from DeriveSessionKey.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead}, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	rec := make([]byte, 4+nonceSize, 4+nonceSize+len(p)+c.aead.Overhead())
	binary.BigEndian.PutUint64(rec[4+nonceSize-8:4+nonceSize], c.sendCtr)
	c.sendCtr++
	rec = c.aead.Seal(rec, rec[4:4+nonceSize], p, nil)
	binary.BigEndian.PutUint32(rec[:4], uint32(len(rec)-4))

	if _, err := c.Conn.Write(rec); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	if c.recvBuf.Len() == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length > maxRecordSize || length < nonceSize {
			return 0, errBadRecord
		}
		rec := make([]byte, length)
		if _, err := io.ReadFull(c.Conn, rec); err != nil {
			return 0, err
		}
		pt, err := c.aead.Open(nil, rec[:nonceSize], rec[nonceSize:], nil)
		if err != nil {
			return 0, err
		}
		c.recvBuf.Write(pt)
	}
	return c.recvBuf.Read(p)
}
