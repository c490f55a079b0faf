package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Answer values the resolver branches on. Other values are accepted and fall
// through to the default recommendation.
const (
	PhaseAcclimation = "acclimation"
	PhaseMaintenance = "maintenance"

	PainNausea           = "nausea"
	PainBloating         = "bloating"
	PainPublicNauseaFear = "public-nausea-fear"
	PainDehydration      = "dehydration"
	PainMuscleLoss       = "muscle-loss"
	PainWeightRegain     = "weight-regain"

	CommitmentResearchOnly = "research-only"
	CommitmentFullSystem   = "full-system"
)

// Questions is the fixed question order: treatment phase, primary pain point,
// commitment level.
const Questions = 3

var ErrIncompleteAnswers = errors.New("quiz answers incomplete")

// Answers holds one selected value per question.
type Answers struct {
	Phase      string `json:"phase"`
	Pain       string `json:"pain"`
	Commitment string `json:"commitment"`
}

// AnswersFromSequence maps answers by question index (0 phase, 1 pain,
// 2 commitment) onto Answers.
func AnswersFromSequence(byIndex map[int]string) (Answers, error) {
	for i := 0; i < Questions; i++ {
		if strings.TrimSpace(byIndex[i]) == "" {
			return Answers{}, fmt.Errorf("%w: question %d", ErrIncompleteAnswers, i)
		}
	}
	return Answers{
		Phase:      byIndex[0],
		Pain:       byIndex[1],
		Commitment: byIndex[2],
	}, nil
}

// Resolve picks exactly one recommendation. Rules are checked top to bottom
// and the first match wins.
func Resolve(a Answers) Result {
	switch {
	case a.Commitment == CommitmentResearchOnly:
		return bundles[BundleResearcher]
	case a.Phase == PhaseAcclimation && a.Pain == PainNausea:
		return bundles[BundleInjectionDay]
	case a.Pain == PainBloating:
		return bundles[BundleDigestive]
	case a.Pain == PainPublicNauseaFear:
		return bundles[BundleNauseaNavigator]
	case a.Pain == PainDehydration:
		return bundles[BundleHydration]
	case a.Pain == PainNausea:
		return bundles[BundleInjectionDay]
	case a.Pain == PainMuscleLoss, a.Pain == PainWeightRegain:
		return bundles[BundleMaintenance]
	default:
		return bundles[BundleHydration]
	}
}
