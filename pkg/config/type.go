package config

type MeterCollectorConfig struct {
	InterpreterAPIHost string `toml:"interpreter_api_host"`
	TLSEnabled         bool   `toml:"tls_enabled"`
}

type InterpreterAPIConfig struct {
	SerialDevice  string `toml:"serial_device"`
	Baudrate      uint   `toml:"baudrate"`
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
	// Upper bound on a single telegram in bytes.
	// Oversized telegrams are discarded and the reader resyncs.
	TelegramCapacity int `toml:"telegram_capacity"`
	// Abort a telegram on the first malformed line instead of skipping it.
	StrictLineParsing bool `toml:"strict_line_parsing"`
}
