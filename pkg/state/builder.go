package state

import (
	"fmt"
	"strconv"

	"github.com/NotCoffee418/p1decoder/pkg/obis"
)

// Build folds a sequence of data objects into a snapshot. Unknown
// addresses are ignored by design so that newer meter firmware never
// breaks decoding. A mapped address whose value shape does not match is
// collected as a FieldError; the field stays absent and building
// continues. Build is pure: the same input always yields the same state.
func Build(objects []obis.DataObject) (*State, []FieldError) {
	s := &State{}
	var errs []FieldError
	for _, o := range objects {
		if apply, ok := handlers[o.Address]; ok {
			if err := apply(s, o); err != nil {
				errs = append(errs, FieldError{Address: o.Address, Err: err})
			}
			continue
		}
		if ch := o.Address.Channel(); o.Address.Group(0) == 0 && ch >= 1 && ch <= len(s.Slaves) {
			if apply, ok := slaveHandlers[o.Address.WithChannel(0)]; ok {
				slave := &s.Slaves[ch-1]
				slave.Channel = ch
				if err := apply(slave, o); err != nil {
					errs = append(errs, FieldError{Address: o.Address, Err: err})
				}
			}
		}
	}
	return s, errs
}

type handler func(*State, obis.DataObject) error

type slaveHandler func(*Slave, obis.DataObject) error

// handlers maps fixed addresses to their State fields. Addresses not
// present here fall through silently.
var handlers = map[obis.Address]handler{
	obis.MustAddress("1-3:0.2.8"):  setString(func(s *State, v string) { s.Version = &v }),
	obis.MustAddress("0-0:96.1.4"): setString(func(s *State, v string) { s.Version = &v }),
	obis.MustAddress("0-0:1.0.0"): func(s *State, o obis.DataObject) error {
		ts, err := timeValue(o, 0)
		if err != nil {
			return err
		}
		s.DateTime = &ts
		return nil
	},
	obis.MustAddress("0-0:96.1.1"):  setString(func(s *State, v string) { s.EquipmentID = &v }),
	obis.MustAddress("0-0:96.14.0"): setString(func(s *State, v string) { s.TariffIndicator = &v }),

	obis.MustAddress("1-0:1.8.0"): setFloat(func(s *State, v float64) { s.EnergyDelivered = &v }),
	obis.MustAddress("1-0:2.8.0"): setFloat(func(s *State, v float64) { s.EnergyReceived = &v }),
	obis.MustAddress("1-0:1.8.1"): setFloat(func(s *State, v float64) { s.Readings[0].Delivered = &v }),
	obis.MustAddress("1-0:1.8.2"): setFloat(func(s *State, v float64) { s.Readings[1].Delivered = &v }),
	obis.MustAddress("1-0:2.8.1"): setFloat(func(s *State, v float64) { s.Readings[0].Received = &v }),
	obis.MustAddress("1-0:2.8.2"): setFloat(func(s *State, v float64) { s.Readings[1].Received = &v }),

	obis.MustAddress("1-0:1.7.0"): setFloat(func(s *State, v float64) { s.PowerDelivered = &v }),
	obis.MustAddress("1-0:2.7.0"): setFloat(func(s *State, v float64) { s.PowerReceived = &v }),

	obis.MustAddress("0-0:96.7.21"): setUint(func(s *State, v uint64) { s.PowerFailures = &v }),
	obis.MustAddress("0-0:96.7.9"):  setUint(func(s *State, v uint64) { s.LongPowerFailures = &v }),
	obis.MustAddress("1-0:99.97.0"): applyFailureLog,

	obis.MustAddress("0-0:96.13.0"): setString(func(s *State, v string) { s.TextMessage = &v }),
	obis.MustAddress("0-0:96.13.1"): setString(func(s *State, v string) { s.MessageCode = &v }),

	obis.MustAddress("1-0:32.32.0"): setLineUint(0, func(l *Line, v uint64) { l.VoltageSags = &v }),
	obis.MustAddress("1-0:52.32.0"): setLineUint(1, func(l *Line, v uint64) { l.VoltageSags = &v }),
	obis.MustAddress("1-0:72.32.0"): setLineUint(2, func(l *Line, v uint64) { l.VoltageSags = &v }),
	obis.MustAddress("1-0:32.36.0"): setLineUint(0, func(l *Line, v uint64) { l.VoltageSwells = &v }),
	obis.MustAddress("1-0:52.36.0"): setLineUint(1, func(l *Line, v uint64) { l.VoltageSwells = &v }),
	obis.MustAddress("1-0:72.36.0"): setLineUint(2, func(l *Line, v uint64) { l.VoltageSwells = &v }),
	obis.MustAddress("1-0:32.7.0"):  setLineFloat(0, func(l *Line, v float64) { l.Voltage = &v }),
	obis.MustAddress("1-0:52.7.0"):  setLineFloat(1, func(l *Line, v float64) { l.Voltage = &v }),
	obis.MustAddress("1-0:72.7.0"):  setLineFloat(2, func(l *Line, v float64) { l.Voltage = &v }),
	obis.MustAddress("1-0:31.7.0"):  setLineFloat(0, func(l *Line, v float64) { l.Current = &v }),
	obis.MustAddress("1-0:51.7.0"):  setLineFloat(1, func(l *Line, v float64) { l.Current = &v }),
	obis.MustAddress("1-0:71.7.0"):  setLineFloat(2, func(l *Line, v float64) { l.Current = &v }),
	obis.MustAddress("1-0:21.7.0"):  setLineFloat(0, func(l *Line, v float64) { l.ActivePowerPlus = &v }),
	obis.MustAddress("1-0:41.7.0"):  setLineFloat(1, func(l *Line, v float64) { l.ActivePowerPlus = &v }),
	obis.MustAddress("1-0:61.7.0"):  setLineFloat(2, func(l *Line, v float64) { l.ActivePowerPlus = &v }),
	obis.MustAddress("1-0:22.7.0"):  setLineFloat(0, func(l *Line, v float64) { l.ActivePowerNeg = &v }),
	obis.MustAddress("1-0:42.7.0"):  setLineFloat(1, func(l *Line, v float64) { l.ActivePowerNeg = &v }),
	obis.MustAddress("1-0:62.7.0"):  setLineFloat(2, func(l *Line, v float64) { l.ActivePowerNeg = &v }),

	// Belgian e-MUCS extensions.
	obis.MustAddress("0-0:96.3.10"): setUint(func(s *State, v uint64) { s.BreakerState = &v }),
	obis.MustAddress("0-0:17.0.0"):  setFloat(func(s *State, v float64) { s.LimiterThreshold = &v }),
	obis.MustAddress("1-0:31.4.0"):  setUint(func(s *State, v uint64) { s.FuseSupervisionThreshold = &v }),
	obis.MustAddress("1-0:1.4.0"):   setFloat(func(s *State, v float64) { s.AverageDemand = &v }),
	obis.MustAddress("1-0:1.6.0"): func(s *State, o obis.DataObject) error {
		m, err := measurementValue(o)
		if err != nil {
			return err
		}
		s.MaximumDemand = &m
		return nil
	},
}

// slaveHandlers maps channel-bearing addresses, keyed with the channel
// group zeroed, onto the slave entry for that channel.
var slaveHandlers = map[obis.Address]slaveHandler{
	obis.MustAddress("0-0:24.1.0"): func(sl *Slave, o obis.DataObject) error {
		v, err := uintValue(o, 0)
		if err != nil {
			return err
		}
		sl.DeviceType = &v
		return nil
	},
	obis.MustAddress("0-0:96.1.0"): setSlaveEquipmentID,
	obis.MustAddress("0-0:96.1.1"): setSlaveEquipmentID,
	obis.MustAddress("0-0:24.2.1"): func(sl *Slave, o obis.DataObject) error {
		m, err := measurementValue(o)
		if err != nil {
			return err
		}
		sl.Reading = &m
		return nil
	},
	obis.MustAddress("0-0:24.2.3"): func(sl *Slave, o obis.DataObject) error {
		m, err := measurementValue(o)
		if err != nil {
			return err
		}
		sl.NonCorrectedReading = &m
		return nil
	},
	obis.MustAddress("0-0:24.4.0"): func(sl *Slave, o obis.DataObject) error {
		v, err := uintValue(o, 0)
		if err != nil {
			return err
		}
		sl.ValveState = &v
		return nil
	},
}

func setSlaveEquipmentID(sl *Slave, o obis.DataObject) error {
	v, err := rawValue(o, 0)
	if err != nil {
		return err
	}
	sl.EquipmentID = &v
	return nil
}

// applyFailureLog decodes 1-0:99.97.0: an entry count, the log address,
// then (end timestamp)(duration*s) pairs.
func applyFailureLog(s *State, o obis.DataObject) error {
	if len(o.Values) < 2 {
		return fmt.Errorf("failure log needs count and buffer address, got %d values", len(o.Values))
	}
	entries := o.Values[2:]
	if len(entries)%2 != 0 {
		return fmt.Errorf("failure log has unpaired entries")
	}
	log := make([]FailureEvent, 0, len(entries)/2)
	for i := 0; i < len(entries); i += 2 {
		if entries[i].Kind != obis.KindTimestamp {
			return fmt.Errorf("failure log entry %d: expected timestamp, got %s", i/2, entries[i].Kind)
		}
		if entries[i+1].Kind != obis.KindNumeric {
			return fmt.Errorf("failure log entry %d: expected duration, got %s", i/2, entries[i+1].Kind)
		}
		dur, err := strconv.ParseUint(entries[i+1].Raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failure log entry %d: duration %q: %w", i/2, entries[i+1].Raw, err)
		}
		log = append(log, FailureEvent{End: entries[i].Time, DurationSeconds: dur})
	}
	s.FailureLog = log
	return nil
}

func setFloat(assign func(*State, float64)) handler {
	return func(s *State, o obis.DataObject) error {
		v, err := floatValue(o, 0)
		if err != nil {
			return err
		}
		assign(s, v)
		return nil
	}
}

func setUint(assign func(*State, uint64)) handler {
	return func(s *State, o obis.DataObject) error {
		v, err := uintValue(o, 0)
		if err != nil {
			return err
		}
		assign(s, v)
		return nil
	}
}

func setString(assign func(*State, string)) handler {
	return func(s *State, o obis.DataObject) error {
		// Presence-only marker, e.g. an empty text message line.
		if len(o.Values) == 0 {
			return nil
		}
		v, err := rawValue(o, 0)
		if err != nil {
			return err
		}
		assign(s, v)
		return nil
	}
}

func setLineFloat(line int, assign func(*Line, float64)) handler {
	return func(s *State, o obis.DataObject) error {
		v, err := floatValue(o, 0)
		if err != nil {
			return err
		}
		assign(&s.Lines[line], v)
		return nil
	}
}

func setLineUint(line int, assign func(*Line, uint64)) handler {
	return func(s *State, o obis.DataObject) error {
		v, err := uintValue(o, 0)
		if err != nil {
			return err
		}
		assign(&s.Lines[line], v)
		return nil
	}
}

func value(o obis.DataObject, i int) (obis.Value, error) {
	if i >= len(o.Values) {
		return obis.Value{}, fmt.Errorf("missing value %d", i)
	}
	return o.Values[i], nil
}

func floatValue(o obis.DataObject, i int) (float64, error) {
	v, err := value(o, i)
	if err != nil {
		return 0, err
	}
	if v.Kind != obis.KindNumeric {
		return 0, fmt.Errorf("value %d: expected numeric, got %s", i, v.Kind)
	}
	return v.Float, nil
}

func uintValue(o obis.DataObject, i int) (uint64, error) {
	v, err := value(o, i)
	if err != nil {
		return 0, err
	}
	if v.Kind != obis.KindNumeric {
		return 0, fmt.Errorf("value %d: expected integer, got %s", i, v.Kind)
	}
	n, err := strconv.ParseUint(v.Raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %d: expected integer, got %q", i, v.Raw)
	}
	return n, nil
}

func rawValue(o obis.DataObject, i int) (string, error) {
	v, err := value(o, i)
	if err != nil {
		return "", err
	}
	if v.Kind == obis.KindTimestamp {
		return "", fmt.Errorf("value %d: expected string, got %s", i, v.Kind)
	}
	return v.Raw, nil
}

func timeValue(o obis.DataObject, i int) (obis.Timestamp, error) {
	v, err := value(o, i)
	if err != nil {
		return obis.Timestamp{}, err
	}
	if v.Kind != obis.KindTimestamp {
		return obis.Timestamp{}, fmt.Errorf("value %d: expected timestamp, got %s", i, v.Kind)
	}
	return v.Time, nil
}

// measurementValue decodes the (timestamp)(value*unit) pair used by
// slave meter readings and demand registers.
func measurementValue(o obis.DataObject) (Measurement, error) {
	ts, err := timeValue(o, 0)
	if err != nil {
		return Measurement{}, err
	}
	v, err := value(o, 1)
	if err != nil {
		return Measurement{}, err
	}
	if v.Kind != obis.KindNumeric {
		return Measurement{}, fmt.Errorf("value 1: expected numeric, got %s", v.Kind)
	}
	return Measurement{Time: ts, Value: v.Float, Unit: v.Unit}, nil
}
