package devices

import (
	"bytes"
	"testing"

	"github.com/james-see/sq80extract/pkg/converter"
)

func testProgram() []byte {
	data := make([]byte, converter.KindProgram.Size())
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

func TestSQ80Name(t *testing.T) {
	d := NewSQ80()
	if d.Name() != "Ensoniq SQ-80" {
		t.Errorf("Name() = %q, want %q", d.Name(), "Ensoniq SQ-80")
	}
	if d.ID() != EnsoniqID {
		t.Errorf("ID() = %d, want %d", d.ID(), EnsoniqID)
	}
}

func TestSQ80GenerateSyxProgram(t *testing.T) {
	d := NewSQ80()
	data := testProgram()

	syx, err := d.GenerateSyx(&converter.Dump{Kind: converter.KindProgram, Channel: 0, Data: data})
	if err != nil {
		t.Fatalf("GenerateSyx() error = %v", err)
	}

	wantHeader := []byte{0xF0, 0x0F, 0x02, 0x00, 0x01}
	if !bytes.Equal(syx[:HeaderSize], wantHeader) {
		t.Errorf("header = % X, want % X", syx[:HeaderSize], wantHeader)
	}
	if syx[len(syx)-1] != SysExEnd {
		t.Errorf("SysEx end = 0x%02X, want 0x%02X", syx[len(syx)-1], SysExEnd)
	}
	if len(syx) != HeaderSize+2*len(data)+1 {
		t.Errorf("length = %d, want %d", len(syx), HeaderSize+2*len(data)+1)
	}

	// byte 1 is 7 = 0x07 -> 07 00, byte 20 is 140 = 0x8C -> 0C 08
	if syx[HeaderSize+2] != 0x07 || syx[HeaderSize+3] != 0x00 {
		t.Errorf("byte 1 nibbles = %02X %02X, want 07 00", syx[HeaderSize+2], syx[HeaderSize+3])
	}
	if syx[HeaderSize+40] != 0x0C || syx[HeaderSize+41] != 0x08 {
		t.Errorf("byte 20 nibbles = %02X %02X, want 0C 08", syx[HeaderSize+40], syx[HeaderSize+41])
	}

	if err := converter.ValidateSyx(syx); err != nil {
		t.Errorf("generated SysEx is invalid: %v", err)
	}
}

func TestSQ80GenerateSyxBankChannel(t *testing.T) {
	d := NewSQ80()
	data := make([]byte, converter.KindBank.Size())

	syx, err := d.GenerateSyx(&converter.Dump{Kind: converter.KindBank, Channel: 9, Data: data})
	if err != nil {
		t.Fatalf("GenerateSyx() error = %v", err)
	}
	if syx[3] != 0x09 || syx[4] != AllProgramDump {
		t.Errorf("channel/type = %02X %02X, want 09 02", syx[3], syx[4])
	}
	if len(syx) != 8166 {
		t.Errorf("length = %d, want 8166", len(syx))
	}
}

func TestSQ80GenerateSyxInvalid(t *testing.T) {
	d := NewSQ80()

	tests := []struct {
		name string
		dump *converter.Dump
	}{
		{"nil", nil},
		{"short program", &converter.Dump{Kind: converter.KindProgram, Data: make([]byte, 10)}},
		{"bank sized program", &converter.Dump{Kind: converter.KindProgram, Data: make([]byte, converter.KindBank.Size())}},
		{"bad channel", &converter.Dump{Kind: converter.KindProgram, Channel: 16, Data: testProgram()}},
		{"no kind", &converter.Dump{Data: testProgram()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.GenerateSyx(tt.dump); err == nil {
				t.Error("GenerateSyx() expected error")
			}
		})
	}
}

func TestSQ80ParseSyx(t *testing.T) {
	d := NewSQ80()
	original := &converter.Dump{Kind: converter.KindProgram, Channel: 3, Data: testProgram()}

	syx, err := d.GenerateSyx(original)
	if err != nil {
		t.Fatalf("GenerateSyx() error = %v", err)
	}

	parsed, err := d.ParseSyx(syx)
	if err != nil {
		t.Fatalf("ParseSyx() error = %v", err)
	}
	if parsed.Kind != converter.KindProgram || parsed.Channel != 3 {
		t.Errorf("ParseSyx() kind/channel = %s/%d", parsed.Kind, parsed.Channel)
	}
	if !bytes.Equal(parsed.Data, original.Data) {
		t.Error("ParseSyx() data differs from original")
	}
}

func TestSQ80ParseSyxInvalid(t *testing.T) {
	d := NewSQ80()

	valid, err := d.GenerateSyx(&converter.Dump{Kind: converter.KindProgram, Data: testProgram()})
	if err != nil {
		t.Fatal(err)
	}

	mutate := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return f(b)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"too short", []byte{0xF0, 0xF7}},
		{"no start byte", []byte{0x00, 0x0F, 0x02, 0x00, 0x01, 0xF7}},
		{"no end byte", []byte{0xF0, 0x0F, 0x02, 0x00, 0x01, 0x00}},
		{"other manufacturer", mutate(func(b []byte) []byte { b[1] = 0x41; return b })},
		{"other family", mutate(func(b []byte) []byte { b[2] = 0x03; return b })},
		{"unknown type", mutate(func(b []byte) []byte { b[4] = 0x0E; return b })},
		{"bad nibble", mutate(func(b []byte) []byte { b[HeaderSize] = 0x10; return b })},
		{"odd nibbles", mutate(func(b []byte) []byte { return append(b[:len(b)-2], SysExEnd) })},
		{"short payload", mutate(func(b []byte) []byte { return append(b[:len(b)-3], SysExEnd) })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.ParseSyx(tt.data); err == nil {
				t.Error("ParseSyx() expected error for invalid data")
			}
		})
	}
}
