package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries every probability and threshold the simulation rolls
// against. Nothing in the sim packages hardcodes a chance; if a number
// matters, it lives here and can be overridden from tuning.yaml.
type Tuning struct {
	Seed int64 `yaml:"seed"`

	// Witness detection.
	WitnessChance        float64 `yaml:"witness_chance"`
	CrowdedWitnessChance float64 `yaml:"crowded_witness_chance"`
	GossipChance         float64 `yaml:"gossip_chance"`

	// Complaints and investigation.
	VictimReportChance  float64 `yaml:"victim_report_chance"`
	ArrestConfidence    float64 `yaml:"arrest_confidence"`
	ColdCaseDays        int     `yaml:"cold_case_days"`
	DiscoveryWindowDays int     `yaml:"discovery_window_days"`
	EvidenceLimit       int     `yaml:"evidence_limit"`

	// Concealment groups.
	FormationChance   float64 `yaml:"formation_chance"`
	DistressThreshold float64 `yaml:"distress_threshold"`
	MinGroupSize      int     `yaml:"min_group_size"`
	TalkChance        float64 `yaml:"talk_chance"`
	LeaderBonus       float64 `yaml:"leader_bonus"`
	MemberBonus       float64 `yaml:"member_bonus"`

	OracleTimeoutMs int `yaml:"oracle_timeout_ms"`
}

func Default() Tuning {
	return Tuning{
		Seed:                 1337,
		WitnessChance:        0.15,
		CrowdedWitnessChance: 0.30,
		GossipChance:         0.25,
		VictimReportChance:   0.60,
		ArrestConfidence:     0.65,
		ColdCaseDays:         14,
		DiscoveryWindowDays:  3,
		EvidenceLimit:        30,
		FormationChance:      0.30,
		DistressThreshold:    -0.70,
		MinGroupSize:         3,
		TalkChance:           0.40,
		LeaderBonus:          1.4,
		MemberBonus:          1.2,
		OracleTimeoutMs:      20000,
	}
}

// Load reads tuning.yaml over the defaults, so a partial file only
// overrides the keys it names.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
