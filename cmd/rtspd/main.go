package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/tidewave/rtspd"
	"github.com/tidewave/rtspd/internal/rtp"
)

const version = "0.1.0"

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		fmt.Println("rtspd", version)
		os.Exit(0)
	}

	cfg, err := loadConfig(flagConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	srv, err := rtspd.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	srv.AddMount(cfg.DefaultMount, rtp.NewH264Packetizer())

	if err := srv.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer srv.Stop()

	fmt.Printf("rtspd listening on %s, mount %s\n", cfg.Bind, cfg.DefaultMount)

	stdinDone := make(chan struct{})
	if flagStdin {
		go func() {
			feedStdin(srv, cfg.DefaultMount)
			close(stdinDone)
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-stdinDone:
	}
}

// feedStdin reads 4-byte big-endian length-prefixed Annex-B frames
// from stdin and pushes each one to the server, returning on EOF or a
// read error. This is a convenience shim for local testing, not a
// capture pipeline integration.
func feedStdin(srv *rtspd.Server, mount string) {
	var lenBuf [4]byte
	const timestampIncrementPerFrame = 3000 // 90kHz clock / 30fps

	for {
		if _, err := io.ReadFull(os.Stdin, lenBuf[:]); err != nil {
			return
		}
		frameLen := binary.BigEndian.Uint32(lenBuf[:])
		frame := make([]byte, frameLen)
		if _, err := io.ReadFull(os.Stdin, frame); err != nil {
			return
		}
		if _, err := srv.SendFrameTo(mount, frame, timestampIncrementPerFrame); err != nil {
			fmt.Fprintln(os.Stderr, "rtspd: send frame:", err)
		}
	}
}
