// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/likexian/selfca"
	"github.com/rs/zerolog/log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type serverTLS struct {
	cert string
	key  string
	self bool
}

// runServer serves the router until SIGINT or SIGTERM, or until the server
// fails to start.
func runServer(router *gin.Engine, port uint16, t serverTLS) error {
	srvAddr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              srvAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	failed := make(chan error, 1)
	go func() {
		var err error
		switch {
		case t.cert != "" && t.key != "":
			log.Info().Msgf("starting TLS Server on address: %s", srvAddr)
			// service connections with tls certs
			err = srv.ListenAndServeTLS(t.cert, t.key)
		case t.self:
			log.Warn().Msgf("using auto self-signed certificate for TLS. This is not recommended for production. Please consider using your own certificates.")
			if srv.TLSConfig, err = selfSignedTLS(); err != nil {
				break
			}

			log.Info().Msgf("starting TLS Server on address: %s", srvAddr)
			// service connections with tls config, no need to pass files
			err = srv.ListenAndServeTLS("", "")
		default:
			log.Warn().Msgf("no TLS configuration, serving plain HTTP. Use either --self-tls or --tls-cert and --tls-key outside a private network")
			log.Info().Msgf("starting Server on address: %s", srvAddr)
			err = srv.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	return gracefulShutdown(srv, failed)
}

func selfSignedTLS() (*tls.Config, error) {
	caConfig := selfca.Certificate{
		IsCA:      true,
		KeySize:   2048,
		NotBefore: time.Now(),
		// 30 day self-signed cert.
		NotAfter: time.Now().Add(time.Duration(30*24) * time.Hour),
	}

	// generating the certificate
	certificate, key, err := selfca.GenerateCertificate(caConfig)
	if err != nil {
		return nil, fmt.Errorf("generating auto self-signed certificate: %w", err)
	}

	pair, err := tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certificate}),
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
	)
	if err != nil {
		return nil, fmt.Errorf("using auto self-signed certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func gracefulShutdown(srv *http.Server, failed <-chan error) error {
	// Wait for interrupt signal to gracefully shut down the server with
	// a timeout.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-failed:
		return fmt.Errorf("error starting server: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server Shutdown.")
	}

	log.Info().Msg("server exiting...")
	return nil
}

func applyServerMode(debug bool) {
	if debug {
		verbose = true
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	applyCliSettings()
}
