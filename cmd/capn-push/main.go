// Command capn-push sends one push notification to a batch of device
// tokens over Apple's legacy binary gateway.
//
//	capn-push [-params] <token> [<token2> [...]]
//	  -c certificate    PEM certificate file (default "cert.pem")
//	  -k key            PEM private key file (default "key.pem")
//	  -p password       private key password
//	  -p12 file         PKCS#12 bundle (overrides -c/-k)
//	  -p12-password pw  PKCS#12 bundle password
//	  -t                use the sandbox gateway
//	  -a text           alert text (default "Hello!")
//	  -f file           JSON file with the full payload
package main

import (
	"encoding/json"
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
	payloadFile := flag.String("f", "", "JSON `file` with the full payload")
	alert := flag.String("a", "Hello!", "alert `text`, used when -f is not given")
	reconnect := flag.Bool("r", true, "reconnect and resume after a recoverable error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "capn-push [-params] <token> [<token2> [...]]")
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(0)

	if flag.NArg() < 1 {
		log.Fatal("no tokens given")
	}
	tokens := flag.Args()

	var payload []byte
	if *payloadFile != "" {
		data, err := os.ReadFile(*payloadFile)
		if err != nil {
			log.Fatalf("reading payload file: %v", err)
		}
		payload = data
	} else {
		data, err := json.Marshal(map[string]interface{}{
			"aps": map[string]interface{}{"alert": *alert},
		})
		if err != nil {
			log.Fatalf("building payload: %v", err)
		}
		payload = data
	}

	client := capn.NewClient()
	if *p12File != "" {
		if err := client.SetPKCS12(*p12File, *p12Password); err != nil {
			log.Fatalf("loading PKCS#12 bundle: %v", err)
		}
	} else {
		if err := client.SetCertificate(*certFile, *keyFile, *keyPassword); err != nil {
			log.Fatalf("loading certificate: %v", err)
		}
	}
	if *sandbox {
		client.SetMode(capn.ModeSandbox)
	}
	var opts capn.Options
	if *reconnect {
		opts |= capn.OptReconnectOnError
	}
	opts |= capn.OptLogToStderr
	client.SetBehavior(opts)
	client.SetLogLevel(capn.LogInfo | capn.LogError)
	defer client.Free()

	if err := client.Connect(); err != nil {
		log.Fatalf("connect: %v", err)
	}

	invalid, err := client.Send(payload, tokens)
	for _, tok := range invalid {
		log.Printf("rejected: %s", tok)
	}
	if err != nil {
		log.Fatalf("send: %v", err)
	}
	log.Println("complete")
}
