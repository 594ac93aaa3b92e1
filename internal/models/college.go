// internal/models/college.go
package models

type CollegeType string

const (
	CollegeGovernment CollegeType = "government"
	CollegePrivate    CollegeType = "private"
	CollegeDeemed     CollegeType = "deemed"
	CollegeAutonomous CollegeType = "autonomous"
)

// College is owned by the data store; the pipeline holds read-only
// references. Optional fields may be zero-valued for partial records.
type College struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Type            CollegeType    `json:"type"`
	Location        string         `json:"location"`
	District        string         `json:"district,omitempty"`
	State           string         `json:"state,omitempty"`
	EstablishedYear int            `json:"establishedYear,omitempty"`
	Accreditation   []string       `json:"accreditation,omitempty"`
	NIRFRank        int            `json:"nirfRank,omitempty"`
	OfficialWebsite string         `json:"officialWebsite,omitempty"`
	Programs        []Program      `json:"programs"`
	PlacementStats  []PlacementStat `json:"placementStats"`
	MentorRatings   []MentorRating `json:"mentorRatings"`
}

type Program struct {
	Name          string `json:"name"`
	Stream        Stream `json:"stream"`
	DurationYears int    `json:"durationYears"`
	AnnualFee     int    `json:"annualFee"`
	TotalSeats    int    `json:"totalSeats"`
	Eligibility   string `json:"eligibility,omitempty"`
	EntranceExam  string `json:"entranceExam,omitempty"`
}

type PlacementStat struct {
	Year                int      `json:"year"`
	PlacementPercentage float64  `json:"placementPercentage"`
	AverageSalary       float64  `json:"averageSalary"`
	HighestSalary       float64  `json:"highestSalary,omitempty"`
	TopRecruiters       []string `json:"topRecruiters,omitempty"`
}

type MentorRating struct {
	Rating     float64 `json:"rating"`
	ReviewText string  `json:"reviewText,omitempty"`
	Verified   bool    `json:"verified"`
}

// LatestPlacement returns the placement stat with the highest year, or nil
// when the college reports none.
func (c *College) LatestPlacement() *PlacementStat {
	var latest *PlacementStat
	for i := range c.PlacementStats {
		if latest == nil || c.PlacementStats[i].Year > latest.Year {
			latest = &c.PlacementStats[i]
		}
	}
	return latest
}
