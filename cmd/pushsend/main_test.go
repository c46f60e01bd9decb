package main

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-pushbridge/internal/protocol"
)

func TestEveryDemoDecodes(t *testing.T) {
	for name := range demos {
		b, err := message(name, false)
		require.NoError(t, err, name)
		msg, err := protocol.Decode(b)
		require.NoError(t, err, name)
		assert.Equal(t, protocol.CommandGrid, msg.Command, name)
	}
}

func TestRunSendsOneDatagram(t *testing.T) {
	pc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer pc.Close()

	require.NoError(t, run(pc.LocalAddr().String(), "list", true))

	buf := make([]byte, 64)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, protocol.Shutdown(), buf[:n])
}

func TestRunRejectsUnknownDemo(t *testing.T) {
	err := run("127.0.0.1:1", "nope", false)
	assert.ErrorContains(t, err, `unknown demo scene "nope"`)
}
