package port_reader

import (
	"fmt"
	"log"
	"time"

	"github.com/NotCoffee418/p1decoder/pkg/decoder"
	"github.com/NotCoffee418/p1decoder/pkg/interpreter"
	"github.com/NotCoffee418/p1decoder/pkg/obis"
	"github.com/jacobsa/go-serial/serial"
)

// Initialize a new P1Reader client.
func NewP1Reader(port string, baudrate uint, telegramCapacity int, strict bool) *P1Reader {
	policy := obis.PolicySkip
	if strict {
		policy = obis.PolicyAbort
	}
	return &P1Reader{
		port:       port,
		baudrate:   baudrate,
		capacity:   telegramCapacity,
		policy:     policy,
		stopSignal: false,
	}
}

// Start listening for readings. The meter emits one telegram per second.
// Runs in goroutine. handleReading() also runs in goroutine.
func (p *P1Reader) StartReading(
	handleReading func(reading *interpreter.Reading),
	handleError func(error),
) {
	p.stopSignal = false

	go func() {
		// Tolerance before we report error.
		consecutiveErrors := 0
		maxErrors := 10
		var lastError error

		// Initialize the connection
		openConnError := p.connect()
		if openConnError != nil {
			handleError(openConnError)
			return
		}

		dec := decoder.NewWithOptions(p.serialPort, decoder.Options{
			Capacity: p.capacity,
			Policy:   p.policy,
		})

		for consecutiveErrors < maxErrors {
			// Check for Stop command
			if p.stopSignal {
				log.Println("Stop signal received, disconnecting")
				p.disconnect()
				return
			}

			result, err := dec.Next()
			if err != nil {
				// Damaged telegrams are discarded; the decoder keeps
				// framing the stream, so these are log-and-continue.
				if decoder.Recoverable(err) {
					log.Printf("Discarded telegram: %v", err)
					continue
				}
				consecutiveErrors++
				lastError = err
				log.Printf("Error reading telegram (%d/%d): %v", consecutiveErrors, maxErrors, err)
				time.Sleep(time.Second)
				continue
			}

			for _, lineErr := range result.SkippedLines {
				log.Printf("Skipped malformed line: %v", lineErr)
			}
			for _, fieldErr := range result.FieldErrors {
				log.Printf("Field left absent: %v", fieldErr)
			}

			reading := &interpreter.Reading{
				ReceivedAt:     time.Now().Format(time.RFC3339),
				Prefix:         result.Prefix,
				Identification: result.Identification,
				State:          result.State,
			}

			p.readingMutex.Lock()
			p.latestReading = reading
			p.readingMutex.Unlock()

			go handleReading(reading)
			consecutiveErrors = 0
		}

		log.Printf("Too many consecutive errors (%d), stopping reader: %v", maxErrors, lastError)
		handleError(lastError)
		p.disconnect()
	}()
}

func (p *P1Reader) StopReading() {
	p.stopSignal = true
	p.disconnect()
}

func (p *P1Reader) GetLatestReading() *interpreter.Reading {
	p.readingMutex.RLock()
	defer p.readingMutex.RUnlock()
	return p.latestReading
}

// Open the connection to the P1 port.
func (p *P1Reader) connect() error {
	options := serial.OpenOptions{
		PortName:        p.port,
		BaudRate:        p.baudrate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	port, err := serial.Open(options)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	p.serialPort = port
	log.Printf("Connected to P1 port on %s", p.port)
	return nil
}

func (p *P1Reader) disconnect() {
	if p.serialPort != nil {
		p.serialPort.Close()
		log.Println("Disconnected from P1 port")
	}
}
