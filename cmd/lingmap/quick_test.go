package main

import (
	"testing"

	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/lingmap"
)

func TestSetStartLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    geo.Coordinates
		wantErr bool
	}{
		{"Caucasus", geo.Coordinates{Lat: 43, Lon: 42}, false},
		{"45.5, 40", geo.Coordinates{Lat: 45.5, Lon: 40}, false},
		{"Atlantis", geo.Coordinates{}, true},
		{"north,40", geo.Coordinates{}, true},
		{"95,40", geo.Coordinates{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b := lingmap.NewBuilder("Adyghe")
			err := setStartLocation(b, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setStartLocation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			cfg, err := b.Config()
			if err != nil {
				t.Fatal(err)
			}
			if cfg.StartLocation != tt.want {
				t.Errorf("StartLocation = %v, want %v", cfg.StartLocation, tt.want)
			}
		})
	}
}
