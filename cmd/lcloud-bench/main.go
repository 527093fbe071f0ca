// Command lcloud-bench exercises a configured cluster end to end:
// open, write, seek, read, close, shutdown. It is a demo binary, not a
// general-purpose client.
package main

import (
	"flag"

	"github.com/ordlucas/lcloud"
	"github.com/ordlucas/lcloud/internal/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetLevel(log.DebugLevel)

	configPath := flag.String("config", "", "path to an lcloud.ini file")
	path := flag.String("path", "bench-file", "logical path to exercise")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	session := lcloud.New(cfg)

	fh, err := session.Open(*path)
	if err != nil {
		log.Fatalf("open: %v", err)
	}

	payload := []byte("the quick brown fox jumps over the lazy dog")
	n, err := session.Write(fh, payload)
	if err != nil {
		log.Fatalf("write: %v", err)
	}
	log.Infof("wrote %d bytes", n)

	if _, err := session.Seek(fh, 0); err != nil {
		log.Fatalf("seek: %v", err)
	}

	buf := make([]byte, len(payload))
	n, err = session.Read(fh, buf)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	log.Infof("read %d bytes: %q", n, buf)

	if err := session.Close(fh); err != nil {
		log.Fatalf("close: %v", err)
	}
	if err := session.Shutdown(); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Info("done")
}
