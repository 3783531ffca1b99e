package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineBoardType(t *testing.T) {
	tests := []struct {
		name string
		sig  Signals
		want BoardType
	}{
		{
			name: "breadcrumb external ssd",
			sig:  Signals{Breadcrumb: "External Solid State Drives", ProductName: "Some Drive"},
			want: BoardExternalSSD,
		},
		{
			name: "breadcrumb sd refined to micro by name",
			sig:  Signals{Breadcrumb: "SD Cards", ProductName: "SanDisk 128GB microSDXC Card"},
			want: BoardMicroSD,
		},
		{
			name: "breadcrumb beats contradicting attributes",
			sig: Signals{
				Breadcrumb:          "USB Flash Drives",
				ProductName:         "Portable SSD 1TB",
				HardDiskDescription: "SSD",
			},
			want: BoardFlashDrive,
		},
		{
			name: "hard disk description ssd external by name",
			sig: Signals{
				ProductName:         "Crucial X9 Portable 1TB",
				HardDiskDescription: "Solid State Drive",
			},
			want: BoardExternalSSD,
		},
		{
			name: "hard disk description ssd internal by name",
			sig: Signals{
				ProductName:         "WD Blue SN580 M.2 NVMe 1TB",
				HardDiskDescription: "SSD",
			},
			want: BoardInternalSSD,
		},
		{
			name: "ssd refined by installation type",
			sig: Signals{
				ProductName:         "Fast Drive 2TB",
				HardDiskDescription: "SSD",
				InstallationType:    "Internal Hard Drive",
			},
			want: BoardInternalSSD,
		},
		{
			name: "ssd from product name only",
			sig:  Signals{ProductName: "Samsung T7 Portable SSD 2TB USB 3.2"},
			want: BoardExternalSSD,
		},
		{
			name: "flash drive via flash memory type",
			sig:  Signals{ProductName: "Memory Stick 64GB", FlashMemoryType: "USB 3.0"},
			want: BoardFlashDrive,
		},
		{
			name: "flash drive via connectivity",
			sig:  Signals{ProductName: "Thumb Stick", ConnectivityTechnology: "USB-A"},
			want: BoardFlashDrive,
		},
		{
			name: "micro sd via flash memory type",
			sig:  Signals{ProductName: "Memory Card 256GB", FlashMemoryType: "Micro SDXC"},
			want: BoardMicroSD,
		},
		{
			name: "sd via hardware interface",
			sig:  Signals{ProductName: "Camera Card", HardwareInterface: "SDHC"},
			want: BoardSD,
		},
		{
			name: "sd family from name with tf token",
			sig:  Signals{ProductName: "Lexar 128GB TF Card for Dashcam"},
			want: BoardMicroSD,
		},
		{
			name: "nothing matches",
			sig:  Signals{ProductName: "HDMI Cable 6ft"},
			want: BoardUnknown,
		},
		{
			name: "empty signals",
			sig:  Signals{},
			want: BoardUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineBoardType(tt.sig))
		})
	}
}

func TestBoardNameAndDivision(t *testing.T) {
	name, division := BoardNameAndDivision(BoardExternalSSD, true)
	assert.Equal(t, "BEST_External SSD", name)
	assert.Equal(t, "PSSD", division)

	name, division = BoardNameAndDivision(BoardExternalSSD, false)
	assert.Equal(t, "External SSD", name)
	assert.Equal(t, "PSSD", division)

	name, division = BoardNameAndDivision(BoardMicroSD, false)
	assert.Equal(t, "Micro SD", name)
	assert.Equal(t, "microSD", division)

	// Unknown never takes the bestseller prefix.
	name, division = BoardNameAndDivision(BoardUnknown, true)
	assert.Equal(t, "Unknown", name)
	assert.Equal(t, "Unknown", division)
}
