package models

// ChannelSummary holds basic statistics for one channel of a log.
type ChannelSummary struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Samples  int     `json:"samples"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Decimals int     `json:"-"`
}

func (ChannelSummary) CSVHeader() []string {
	return []string{"channel", "unit", "samples", "min", "max", "mean"}
}

func (s *ChannelSummary) CSVRow() []string {
	prec := s.Decimals
	if prec < 0 {
		prec = 3
	}
	return []string{
		s.Name,
		s.Unit,
		itoa(s.Samples),
		ftoa(s.Min, prec),
		ftoa(s.Max, prec),
		ftoa(s.Mean, prec+1),
	}
}
