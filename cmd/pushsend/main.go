// Command pushsend sends one display datagram to a running bridge.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-pushbridge/internal/protocol"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:7000", "bridge UDP address")
		demo     = flag.String("demo", "channels", "scene: channels | params | sends | list | empty")
		shutdown = flag.Bool("shutdown", false, "send the shutdown command instead of a scene")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := run(*addr, *demo, *shutdown); err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Str("demo", *demo).Msg("pushsend")
	}
}

// message builds the datagram for a demo scene or the shutdown command.
func message(demo string, shutdown bool) ([]byte, error) {
	if shutdown {
		return protocol.Shutdown(), nil
	}
	elems, ok := demos[demo]
	if !ok {
		return nil, fmt.Errorf("unknown demo scene %q", demo)
	}
	var enc protocol.Encoder
	b, err := enc.Grid(elems()...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", demo, err)
	}
	return b, nil
}

func run(addr, demo string, shutdown bool) error {
	msg, err := message(demo, shutdown)
	if err != nil {
		return err
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Write(msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	log.Info().Str("addr", addr).Str("demo", demo).Int("bytes", len(msg)).Msg("sent")
	return nil
}
