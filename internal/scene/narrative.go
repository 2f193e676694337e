package scene

import (
	"errors"

	"github.com/NativeSquare/Cadence-sub000/internal/interview"
)

// Narrative blocks are rule tables over the finalized responses. Each table
// ends with a catch-all so every block has text.
var (
	greeting = interview.Table("welcome.greeting",
		interview.Otherwise("Hi{{if .Name}} {{.Name}}{{end}}. I'm your coach. Before we start, is that the right name?"),
	)
	gotIt = interview.Table("welcome.got_it",
		interview.Otherwise("Got it{{if .Name}}, {{.Name}}{{end}}. Thanks for the fix."),
	)
	transition = interview.Table("welcome.transition",
		interview.Otherwise("I'm going to ask you a few questions about your running. It takes about five minutes, and every answer changes the plan."),
	)
	wearablePrompt = interview.Table("wearable.prompt",
		interview.Otherwise("If you use a watch or a running app, connect it and I'll read your recent training instead of guessing."),
	)
	connected = interview.Table("wearable.connected",
		interview.Otherwise("Connected. I can see your training history now."),
	)
	handoff = interview.Table("handoff",
		interview.Otherwise("That's everything I need{{if .Name}}, {{.Name}}{{end}}. Your first week is ready when you are."),
	)
)

var thinkingTables = []interview.RuleTable{
	interview.Table("thinking.open",
		interview.Otherwise("Okay{{if .Name}} {{.Name}}{{end}}, give me a second to put this together."),
	),
	interview.Table("thinking.goal",
		interview.When(interview.AllOf(interview.Is(interview.QGoal, "race"), interview.Answered(interview.QRaceDate)), "Race day is {{.Answer \"race_date\"}}. I'm counting back from there."),
		interview.When(interview.Is(interview.QGoal, "return_from_injury"), "Coming back from an injury changes the order of everything. Durability first."),
		interview.When(interview.Is(interview.QGoal, "weight"), "For weight, consistency beats intensity. Lots of easy time on your feet."),
		interview.Otherwise("No race date, so we build fitness first and stay flexible."),
	),
	interview.Table("thinking.load",
		interview.When(interview.Is(interview.QExperience, "new"), "You're new, so the first weeks mix running and walking."),
		interview.When(interview.AllOf(interview.Answered(interview.QWeeklyVolume), interview.IsNot(interview.QExperience, "new")), "You're running about {{.Answer \"weekly_volume\"}} a week now. That's our baseline."),
		interview.Otherwise("I'll start conservative and let your first week tell me more."),
	),
	interview.Table("thinking.week",
		interview.When(interview.Answered(interview.QDaysPerWeek), "{{.Answer \"days_per_week\"}} days a week. Let me see how that fits together."),
		interview.Otherwise("Let me see how your week fits together."),
	),
}

var coachingTables = []interview.RuleTable{
	interview.Table("coaching.challenge",
		interview.When(interview.Is(interview.QBiggestChallenge, "pacing"), "You said pacing is hard. Most runners go too fast on easy days, so every easy run gets a ceiling."),
		interview.When(interview.Is(interview.QBiggestChallenge, "consistency"), "Consistency is the whole game. Short runs you actually do beat long runs you skip."),
		interview.When(interview.Is(interview.QBiggestChallenge, "motivation"), "Motivation comes and goes. We'll lean on routine so the bad days still count."),
		interview.When(interview.Is(interview.QBiggestChallenge, "time"), "Time is tight, so every session has one clear job and nothing extra."),
		interview.When(interview.Is(interview.QBiggestChallenge, "injury"), "Getting hurt has stopped you before. Load goes up slowly and strength work is part of the plan."),
		interview.When(interview.Is(interview.QBiggestChallenge, "plateau"), "A plateau usually means the same stimulus too long. We'll change what your weeks ask of you."),
		interview.Otherwise("Whatever gets in your way, we'll adjust around it week by week."),
	),
	interview.Table("coaching.struggles",
		interview.When(interview.Has(interview.QPastStruggles, "burnout"), "Burnout showed up before, so recovery weeks are built in, not earned."),
		interview.When(interview.Has(interview.QPastStruggles, "boredom"), "Boredom showed up before, so no two weeks will look the same."),
		interview.When(interview.Has(interview.QPastStruggles, "life_events"), "When life gets busy, the plan shrinks instead of breaking."),
		interview.Otherwise("No old patterns to fight. That's a good place to start."),
	),
	interview.Table("coaching.why",
		interview.When(interview.AllOf(interview.Answered(interview.QWhy), interview.IsNot(interview.QWhy, interview.SkipValue)), "You told me why this matters: \"{{.Answer \"why\"}}\". I'll keep that in front of us."),
		interview.Otherwise("Keep your reason close. It carries you through the flat weeks."),
	),
}

var limitsTables = []interview.RuleTable{
	interview.Table("limits.open",
		interview.Otherwise("Some honesty before the plan."),
	),
	interview.Table("limits.health",
		interview.When(interview.Is(interview.QInjuryStatus, "active"), "You have pain right now. I'm a coach, not a clinician, so please get it looked at. I'll keep things gentle meanwhile."),
		interview.When(interview.Is(interview.QInjuryStatus, "managing"), "You're managing an injury. If it flares, tell me and we'll back off before it gets worse."),
		interview.When(interview.AnyOf(interview.Is(interview.QSleep, "under_6"), interview.Is(interview.QStress, "high")), "Short sleep and high stress slow adaptation. I can plan around them, not cancel them out."),
		interview.Otherwise("I can't see how you feel on a given day. Your feedback after each run is what keeps the plan honest."),
	),
	interview.Table("limits.data",
		interview.When(interview.Is(interview.QEasyPace, interview.SkipValue), "You weren't sure of your easy pace, so early paces are guesses until we have a few runs."),
		interview.When(interview.Is(interview.QExperience, "new"), "With no running history, the first weeks are about learning what your body tolerates."),
		interview.Otherwise("Everything I know comes from what you told me, so the first two weeks are a calibration."),
	),
}

var synthesisTables = []interview.RuleTable{
	interview.Table("synthesis.frame",
		interview.When(interview.AllOf(interview.Is(interview.QGoal, "race"), interview.Answered(interview.QRaceDistance)), "Here's the shape of it{{if .Name}}, {{.Name}}{{end}}: a {{.Answer \"race_distance\"}} build."),
		interview.Otherwise("Here's the shape of it{{if .Name}}, {{.Name}}{{end}}: a steady base-building block."),
	),
	interview.Table("synthesis.week",
		interview.When(interview.Is(interview.QDaysPerWeek, "2", "3"), "{{.Answer \"days_per_week\"}} runs a week: mostly easy, one with some quality."),
		interview.When(interview.Is(interview.QDaysPerWeek, "4", "5", "6"), "{{.Answer \"days_per_week\"}} runs a week: easy running, one quality day and a long run."),
		interview.Otherwise("A few runs a week, mostly easy."),
	),
	interview.Table("synthesis.long_run",
		interview.When(interview.Is(interview.QLongRunDay, "sat"), "Long runs on Saturdays."),
		interview.When(interview.Is(interview.QLongRunDay, "sun"), "Long runs on Sundays."),
		interview.When(interview.Is(interview.QLongRunDay, "weekday"), "Long runs midweek, where you have the time."),
		interview.Otherwise("Weekday runs stay around {{if .Answer \"session_length\"}}{{.Answer \"session_length\"}} minutes{{else}}your usual length{{end}}."),
	),
	interview.Table("synthesis.focus",
		interview.When(interview.Is(interview.QInjuryStatus, "active", "managing"), "Focus for the first month: protect the injury and build durability."),
		interview.When(interview.Is(interview.QBiggestChallenge, "pacing"), "Focus for the first month: easy means easy."),
		interview.When(interview.Is(interview.QBiggestChallenge, "consistency", "motivation"), "Focus for the first month: show up, even briefly."),
		interview.Otherwise("Focus for the first month: a base you can build on."),
	),
}

func blocks(tables []interview.RuleTable, r interview.Responses, name string) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.Eval(r, name))
	}
	return out
}

func ThinkingStreamBlocks(r interview.Responses, name string) []string {
	return blocks(thinkingTables, r, name)
}

func CoachingResponseBlocks(r interview.Responses, name string) []string {
	return blocks(coachingTables, r, name)
}

func HonestLimitsBlocks(r interview.Responses, name string) []string {
	return blocks(limitsTables, r, name)
}

func SynthesisBlocks(r interview.Responses, name string) []string {
	return blocks(synthesisTables, r, name)
}

// Blocks returns the narrative blocks of s, or nil for other scenes.
func Blocks(s Scene, r interview.Responses, name string) []string {
	switch s {
	case ThinkingStream:
		return ThinkingStreamBlocks(r, name)
	case CoachingResponse:
		return CoachingResponseBlocks(r, name)
	case HonestLimits:
		return HonestLimitsBlocks(r, name)
	case Synthesis:
		return SynthesisBlocks(r, name)
	}
	return nil
}

func Greeting(name string) string { return greeting.Eval(nil, name) }

func GotIt(name string) string { return gotIt.Eval(nil, name) }

func Transition(name string) string { return transition.Eval(nil, name) }

func WearablePrompt() string { return wearablePrompt.Eval(nil, "") }

func Connected(device string) string {
	if device != "" {
		return "Connected to " + device + ". I can see your training history now."
	}
	return connected.Eval(nil, "")
}

func HandoffText(r interview.Responses, name string) string { return handoff.Eval(r, name) }

// ValidateNarrative checks every narrative rule table.
func ValidateNarrative() error {
	all := []interview.RuleTable{greeting, gotIt, transition, wearablePrompt, connected, handoff}
	for _, ts := range [][]interview.RuleTable{thinkingTables, coachingTables, limitsTables, synthesisTables} {
		all = append(all, ts...)
	}
	var errs []error
	for _, t := range all {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
