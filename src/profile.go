package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Read and write threshold profiles.
 *
 * Description:	A profile is a YAML file holding any subset of the
 *		detection thresholds, for example
 *
 *			diff: 12
 *			min_peak_amp: 40
 *			max_noise_floor: 25
 *
 *		Keys that are missing keep whatever value they had
 *		before the profile was read.  Calibration mode can
 *		write its recommendations out in the same format.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadProfile reads path over base.
func LoadProfile(path string, base DetectConfig) (DetectConfig, error) {
	var data, readErr = os.ReadFile(path)
	if readErr != nil {
		return base, fmt.Errorf("reading profile: %w", readErr)
	}

	var cfg = base

	var dec = yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return base, fmt.Errorf("profile %s: %w", path, err)
	}

	return cfg, nil
}

func SaveProfile(path string, cfg DetectConfig) error {
	var data, err = yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("writing profile: %w", err)
	}

	return nil
}

// ProfileWriter saves the calibration recommendations of each cycle, on top of
// the thresholds in use, as a profile that a later run can load.
type ProfileWriter struct {
	Path string
	Base DetectConfig
}

func (w *ProfileWriter) Cycle(res CycleResult) {
	if res.Scan.Baseline == nil {
		return
	}

	var rec = res.Scan.Baseline.Recommend()
	if !rec.Any() {
		return
	}

	if err := SaveProfile(w.Path, rec.Apply(w.Base)); err != nil {
		logger.Error("saving recommended profile", "err", err)

		return
	}

	logger.Info("saved recommended profile", "path", w.Path)
}
