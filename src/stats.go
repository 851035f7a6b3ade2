package dump1030

// Counts are the per type tallies for one cycle or for a whole run.
type Counts struct {
	Total              int `json:"total"`
	ModeA              int `json:"mode_a"`
	ModeC              int `json:"mode_c"`
	ModeS              int `json:"mode_s"`
	ModeAAllCall       int `json:"mode_a_all_call"`
	ModeCAllCall       int `json:"mode_c_all_call"`
	ModeAAllCallCompat int `json:"mode_a_all_call_compat"`
	ModeCAllCallCompat int `json:"mode_c_all_call_compat"`
}

func (c *Counts) Add(msg Message) {
	c.Total++

	switch msg.OrderCode() {
	case OrderModeS:
		c.ModeS++
	case OrderModeA:
		c.ModeA++
	case OrderModeC:
		c.ModeC++
	case OrderModeAAllCall:
		c.ModeAAllCall++
	case OrderModeCAllCall:
		c.ModeCAllCall++
	case OrderModeAAllCallCompat:
		c.ModeAAllCallCompat++
	case OrderModeCAllCallCompat:
		c.ModeCAllCallCompat++
	}
}

func (c *Counts) Merge(o Counts) {
	c.Total += o.Total
	c.ModeA += o.ModeA
	c.ModeC += o.ModeC
	c.ModeS += o.ModeS
	c.ModeAAllCall += o.ModeAAllCall
	c.ModeCAllCall += o.ModeCAllCall
	c.ModeAAllCallCompat += o.ModeAAllCallCompat
	c.ModeCAllCallCompat += o.ModeCAllCallCompat
}

// Stats keeps the latest cycle next to a running total that is never reset.
type Stats struct {
	Cycle      Counts
	Cumulative Counts
	Cycles     int
}

func (s *Stats) Record(c Counts) {
	s.Cycle = c
	s.Cumulative.Merge(c)
	s.Cycles++
}
