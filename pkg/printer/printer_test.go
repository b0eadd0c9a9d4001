package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsPrinter(t *testing.T) {
	p, err := New(Config{Type: ""})
	require.NoError(t, err)
	assert.IsType(t, NullPrinter{}, p)

	_, err = New(Config{Type: "usb"})
	assert.Error(t, err)

	_, err = New(Config{Type: "network"})
	assert.Error(t, err)

	_, err = New(Config{Type: "bluetooth"})
	assert.Error(t, err)
}

func TestNetworkPrinterWritesJob(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p, err := New(Config{Type: "network", Address: ln.Addr().String()})
	require.NoError(t, err)

	job := NewDocument(32).Text("hello").Cut().Bytes()
	require.NoError(t, p.Print(context.Background(), job))

	assert.Equal(t, job, <-received)
}

func TestDocumentRow(t *testing.T) {
	doc := NewDocument(20)
	doc.Row("Total", "220.00")
	doc.Row("A very long product name indeed", "9.99")

	out := doc.Bytes()[2:] // skip ESC @
	lines := bytes.Split(bytes.TrimSuffix(out, []byte{LF}), []byte{LF})
	require.Len(t, lines, 2)
	assert.Equal(t, "Total         220.00", string(lines[0]))
	assert.Len(t, lines[1], 20)
	assert.True(t, bytes.HasSuffix(lines[1], []byte(" 9.99")))
}

func TestDocumentStartsWithInit(t *testing.T) {
	out := NewDocument(0).Bytes()
	assert.Equal(t, []byte{ESC, '@'}, out)
	assert.Equal(t, 32, NewDocument(0).Width())
}
