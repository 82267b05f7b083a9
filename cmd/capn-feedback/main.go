// Command capn-feedback drains Apple's feedback service and prints every
// token it reports as permanently undeliverable, one per line, as
// "<timestamp> <hex token>".
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bryant1410/libcapn"
)

func main() {
	certFile := flag.String("c", "cert.pem", "PEM `certificate` file")
	keyFile := flag.String("k", "key.pem", "PEM private `key` file")
	keyPassword := flag.String("p", "", "private key `password`")
	p12File := flag.String("p12", "", "PKCS#12 `bundle`, overrides -c/-k")
	p12Password := flag.String("p12-password", "", "PKCS#12 bundle `password`")
	sandbox := flag.Bool("t", false, "use the sandbox gateway")
	configFile := flag.String("config", "", "load settings from a JSON `file` instead of flags")
	flag.Parse()
	log.SetFlags(0)

	var client *capn.Client
	if *configFile != "" {
		c, err := capn.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		client = c
	} else {
		client = capn.NewClient()
		if *p12File != "" {
			if err := client.SetPKCS12(*p12File, *p12Password); err != nil {
				log.Fatalf("loading PKCS#12 bundle: %v", err)
			}
		} else {
			if err := client.SetCertificate(*certFile, *keyFile, *keyPassword); err != nil {
				log.Fatalf("loading certificate: %v", err)
			}
		}
	}
	if *sandbox {
		client.SetMode(capn.ModeSandbox)
	}
	client.SetBehavior(capn.OptLogToStderr)
	client.SetLogLevel(capn.LogError)
	defer client.Free()

	if err := client.FeedbackConnect(); err != nil {
		log.Fatalf("connect: %v", err)
	}

	records, err := client.Feedback()
	for _, r := range records {
		fmt.Printf("%s %s\n", r.Timestamp.Format("2006-01-02T15:04:05Z07:00"), r.Token)
	}
	if err != nil {
		log.Fatalf("feedback: %v", err)
	}
	os.Exit(0)
}
