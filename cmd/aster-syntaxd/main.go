// Package main provides the aster-syntaxd daemon: the parse service over
// HTTP/3, with an optional plain TCP listener.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/orizon-lang/aster/internal/syntaxd"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		addr        = flag.String("addr", ":8473", "HTTP/3 (UDP) listen address")
		tcpAddr     = flag.String("tcp-addr", "", "optional plain HTTP (TCP) listen address")
		certFile    = flag.String("cert", "", "TLS certificate file (required for HTTP/3)")
		keyFile     = flag.String("key", "", "TLS key file (required for HTTP/3)")
		cacheSize   = flag.Int("cache-size", 1024, "parse cache capacity")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("aster-syntaxd v%s (%s)\n", version, commit)
		return
	}

	srv, err := syntaxd.NewServer(*cacheSize)
	if err != nil {
		log.Fatal(err)
	}

	if *tcpAddr != "" {
		go func() {
			log.Printf("serving HTTP on %s", *tcpAddr)
			if err := syntaxd.ServeTCP(*tcpAddr, srv); err != nil {
				log.Fatal(err)
			}
		}()
	}

	if *certFile == "" || *keyFile == "" {
		if *tcpAddr == "" {
			fmt.Fprintln(os.Stderr, "error: -cert and -key are required for HTTP/3 (or pass -tcp-addr)")
			os.Exit(1)
		}
		select {}
	}

	cert, err := tls.LoadX509KeyPair(*certFile, *keyFile)
	if err != nil {
		log.Fatal(err)
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS13}

	h3 := syntaxd.NewHTTP3Server(*addr, tlsCfg, srv)
	bound, err := h3.Start()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("serving HTTP/3 on %s", bound)
	select {}
}
