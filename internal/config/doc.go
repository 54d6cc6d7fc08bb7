// Package config provides configuration parsing for canopy.
//
// The configuration is stored in canopy.json, canopy.yaml or canopy.yml in
// the working directory. This package handles loading, saving, defaults
// and validation.
//
// # Configuration File Structure
//
//	server:
//	  addr: "localhost:8080"
//	  readTimeout: "10s"
//	  writeTimeout: "10s"
//	  sendQueue: 64
//	  maxMessageSize: 65536
//	frames:
//	  fps: 60
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  path: /metrics
//	tracing:
//	  enabled: false
//	  tracerName: canopy
//	journal:
//	  dir: ./journal
//	  rotateEvery: 5m
//	  s3:
//	    bucket: ui-journals
//	    prefix: demo/
//	    region: us-east-1
//
// The same keys are used in JSON.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
