package state

import (
	"reflect"
	"testing"

	"github.com/NotCoffee418/p1decoder/pkg/obis"
)

func objectsFromLines(t *testing.T, lines ...string) []obis.DataObject {
	t.Helper()
	objects := make([]obis.DataObject, 0, len(lines))
	for _, line := range lines {
		obj, err := obis.ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", line, err)
		}
		objects = append(objects, obj)
	}
	return objects
}

func TestBuildTypicalTelegram(t *testing.T) {
	s, errs := Build(objectsFromLines(t,
		"0-0:96.1.4(50217)",
		"0-0:96.1.1(4B384547303034303436333935353037)",
		"0-0:1.0.0(250714203045S)",
		"1-0:1.8.1(000123.456*kWh)",
		"1-0:1.8.2(000456.789*kWh)",
		"1-0:2.8.1(000010.000*kWh)",
		"1-0:2.8.2(000020.000*kWh)",
		"0-0:96.14.0(0001)",
		"1-0:1.7.0(00.423*kW)",
		"1-0:2.7.0(00.000*kW)",
	))
	if len(errs) != 0 {
		t.Fatalf("field errors: %v", errs)
	}
	if s.Version == nil || *s.Version != "50217" {
		t.Errorf("Version = %v", s.Version)
	}
	if s.EquipmentID == nil || *s.EquipmentID != "4B384547303034303436333935353037" {
		t.Errorf("EquipmentID = %v", s.EquipmentID)
	}
	if s.DateTime == nil || !s.DateTime.DST || s.DateTime.Year != 25 {
		t.Errorf("DateTime = %+v", s.DateTime)
	}
	if s.Readings[0].Delivered == nil || *s.Readings[0].Delivered != 123.456 {
		t.Errorf("Readings[0].Delivered = %v", s.Readings[0].Delivered)
	}
	if s.Readings[1].Delivered == nil || *s.Readings[1].Delivered != 456.789 {
		t.Errorf("Readings[1].Delivered = %v", s.Readings[1].Delivered)
	}
	if s.TariffIndicator == nil || *s.TariffIndicator != "0001" {
		t.Errorf("TariffIndicator = %v", s.TariffIndicator)
	}
	if s.PowerDelivered == nil || *s.PowerDelivered != 0.423 {
		t.Errorf("PowerDelivered = %v", s.PowerDelivered)
	}
}

func TestBuildGasChannel(t *testing.T) {
	s, errs := Build(objectsFromLines(t,
		"0-1:24.1.0(003)",
		"0-1:96.1.0(3232323241424344313233343536373839)",
		"0-1:24.2.1(250714200000W)(00456.789*m3)",
	))
	if len(errs) != 0 {
		t.Fatalf("field errors: %v", errs)
	}
	gas := s.Slaves[0]
	if gas.Channel != 1 {
		t.Errorf("Channel = %d, want 1", gas.Channel)
	}
	if gas.DeviceType == nil || *gas.DeviceType != 3 {
		t.Errorf("DeviceType = %v", gas.DeviceType)
	}
	if gas.Reading == nil || gas.Reading.Value != 456.789 || gas.Reading.Unit != "m3" {
		t.Errorf("Reading = %+v", gas.Reading)
	}
	if gas.Reading.Time.DST {
		t.Error("Reading.Time.DST = true, want false")
	}
	// Channels 2..4 untouched.
	for i := 1; i < len(s.Slaves); i++ {
		if s.Slaves[i].Channel != 0 {
			t.Errorf("Slaves[%d].Channel = %d, want 0", i, s.Slaves[i].Channel)
		}
	}
}

func TestBuildFourSlaveChannels(t *testing.T) {
	s, errs := Build(objectsFromLines(t,
		"0-1:24.2.1(250714200000W)(00001.000*m3)",
		"0-2:24.2.1(250714200000W)(00002.000*m3)",
		"0-3:24.2.1(250714200000W)(00003.000*GJ)",
		"0-4:24.2.1(250714200000W)(00004.000*m3)",
	))
	if len(errs) != 0 {
		t.Fatalf("field errors: %v", errs)
	}
	for i := 0; i < 4; i++ {
		slave := s.Slaves[i]
		if slave.Channel != i+1 {
			t.Errorf("Slaves[%d].Channel = %d", i, slave.Channel)
		}
		if slave.Reading == nil || slave.Reading.Value != float64(i+1) {
			t.Errorf("Slaves[%d].Reading = %+v", i, slave.Reading)
		}
	}
}

func TestBuildFailureLog(t *testing.T) {
	s, errs := Build(objectsFromLines(t,
		"0-0:96.7.21(00004)",
		"0-0:96.7.9(00002)",
		"1-0:99.97.0(2)(0-0:96.7.19)(220101000001W)(0000000301*s)(210101000001W)(0000000005*s)",
	))
	if len(errs) != 0 {
		t.Fatalf("field errors: %v", errs)
	}
	if s.PowerFailures == nil || *s.PowerFailures != 4 {
		t.Errorf("PowerFailures = %v", s.PowerFailures)
	}
	if s.LongPowerFailures == nil || *s.LongPowerFailures != 2 {
		t.Errorf("LongPowerFailures = %v", s.LongPowerFailures)
	}
	if len(s.FailureLog) != 2 {
		t.Fatalf("FailureLog = %+v, want 2 entries", s.FailureLog)
	}
	if s.FailureLog[0].DurationSeconds != 301 || s.FailureLog[0].End.Year != 22 {
		t.Errorf("FailureLog[0] = %+v", s.FailureLog[0])
	}
	if s.FailureLog[1].DurationSeconds != 5 {
		t.Errorf("FailureLog[1] = %+v", s.FailureLog[1])
	}
}

func TestBuildUnknownAddressesIgnored(t *testing.T) {
	withUnknown, errs := Build(objectsFromLines(t,
		"1-0:1.8.1(000123.456*kWh)",
		"9-9:99.99.99(1)",
		"1-0:1.7.0(00.423*kW)",
	))
	if len(errs) != 0 {
		t.Fatalf("field errors: %v", errs)
	}
	without, _ := Build(objectsFromLines(t,
		"1-0:1.8.1(000123.456*kWh)",
		"1-0:1.7.0(00.423*kW)",
	))
	if !reflect.DeepEqual(withUnknown, without) {
		t.Error("unknown address changed the state")
	}
}

func TestBuildFieldErrorLeavesFieldAbsent(t *testing.T) {
	s, errs := Build(objectsFromLines(t,
		"1-0:1.8.1(not-a-number)",
		"1-0:1.7.0(00.423*kW)",
	))
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want exactly one", errs)
	}
	if errs[0].Address != obis.MustAddress("1-0:1.8.1") {
		t.Errorf("errs[0].Address = %v", errs[0].Address)
	}
	if s.Readings[0].Delivered != nil {
		t.Error("Readings[0].Delivered set despite a bad value")
	}
	// The healthy field in the same telegram still lands.
	if s.PowerDelivered == nil || *s.PowerDelivered != 0.423 {
		t.Errorf("PowerDelivered = %v", s.PowerDelivered)
	}
}

func TestBuildDeterministic(t *testing.T) {
	lines := []string{
		"0-0:96.1.4(50217)",
		"1-0:1.8.1(000123.456*kWh)",
		"0-1:24.2.1(250714200000W)(00456.789*m3)",
		"1-0:99.97.0(1)(0-0:96.7.19)(220101000001W)(0000000301*s)",
	}
	first, firstErrs := Build(objectsFromLines(t, lines...))
	for i := 0; i < 5; i++ {
		again, againErrs := Build(objectsFromLines(t, lines...))
		if !reflect.DeepEqual(first, again) || len(firstErrs) != len(againErrs) {
			t.Fatal("Build is not deterministic")
		}
	}
}

func TestBuildEmucsExtensions(t *testing.T) {
	s, errs := Build(objectsFromLines(t,
		"0-0:96.3.10(1)",
		"0-0:17.0.0(999.9*kW)",
		"1-0:31.4.0(999)",
		"1-0:1.4.0(02.351*kW)",
		"1-0:1.6.0(250714200000W)(02.589*kW)",
	))
	if len(errs) != 0 {
		t.Fatalf("field errors: %v", errs)
	}
	if s.BreakerState == nil || *s.BreakerState != 1 {
		t.Errorf("BreakerState = %v", s.BreakerState)
	}
	if s.LimiterThreshold == nil || *s.LimiterThreshold != 999.9 {
		t.Errorf("LimiterThreshold = %v", s.LimiterThreshold)
	}
	if s.FuseSupervisionThreshold == nil || *s.FuseSupervisionThreshold != 999 {
		t.Errorf("FuseSupervisionThreshold = %v", s.FuseSupervisionThreshold)
	}
	if s.AverageDemand == nil || *s.AverageDemand != 2.351 {
		t.Errorf("AverageDemand = %v", s.AverageDemand)
	}
	if s.MaximumDemand == nil || s.MaximumDemand.Value != 2.589 {
		t.Errorf("MaximumDemand = %+v", s.MaximumDemand)
	}
}

func TestBuildSingleRegisterTotals(t *testing.T) {
	s, errs := Build(objectsFromLines(t,
		"1-0:1.8.0(001234.567*kWh)",
		"1-0:2.8.0(000042.000*kWh)",
	))
	if len(errs) != 0 {
		t.Fatalf("field errors: %v", errs)
	}
	if s.EnergyDelivered == nil || *s.EnergyDelivered != 1234.567 {
		t.Errorf("EnergyDelivered = %v", s.EnergyDelivered)
	}
	if s.EnergyReceived == nil || *s.EnergyReceived != 42 {
		t.Errorf("EnergyReceived = %v", s.EnergyReceived)
	}
	if s.Readings[0].Delivered != nil {
		t.Error("per-tariff register set by a total address")
	}
}
