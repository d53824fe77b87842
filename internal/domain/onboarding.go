package domain

// OnboardingStage is a step of the first-run flow.
type OnboardingStage string

const (
	OnboardingLanding  OnboardingStage = "landing"
	OnboardingUpload   OnboardingStage = "upload"
	OnboardingComplete OnboardingStage = "complete"
)

// OnboardingRecord is what gets persisted between runs.
type OnboardingRecord struct {
	Stage       OnboardingStage `json:"stage"`
	DisplayName string          `json:"displayName"`
}

// Complete reports whether the user already finished onboarding.
func (r OnboardingRecord) Complete() bool {
	return r.Stage == OnboardingComplete
}
