package port_reader

import (
	"io"
	"sync"

	"github.com/NotCoffee418/p1decoder/pkg/interpreter"
	"github.com/NotCoffee418/p1decoder/pkg/obis"
)

type P1Reader struct {
	port       string
	baudrate   uint
	capacity   int
	policy     obis.Policy
	serialPort io.ReadWriteCloser

	latestReading *interpreter.Reading
	readingMutex  sync.RWMutex
	stopSignal    bool
}
