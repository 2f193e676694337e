package interview

// Question ids of the built-in catalog read by the narrative generators.
const (
	QAgeRange         = "age_range"
	QUnits            = "units"
	QExperience       = "experience"
	QWeeklyVolume     = "weekly_volume"
	QEasyPace         = "easy_pace"
	QLongestRun       = "longest_run"
	QGoal             = "goal"
	QRaceDistance     = "race_distance"
	QRaceDate         = "race_date"
	QGoalPace         = "goal_pace"
	QRacePriority     = "race_priority"
	QWhy              = "why"
	QDaysPerWeek      = "days_per_week"
	QPreferredDays    = "preferred_days"
	QSessionLength    = "session_length"
	QLongRunDay       = "long_run_day"
	QBiggestChallenge = "biggest_challenge"
	QPastStruggles    = "past_struggles"
	QInjuries         = "injuries"
	QInjuryStatus     = "injury_status"
	QSleep            = "sleep"
	QStress           = "stress"
)

func opts(pairs ...string) []Option {
	out := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

func withNone(label string, os []Option) []Option {
	return append(os, Option{Value: NoneValue, Label: label, Exclusive: true})
}

// DefaultCatalog returns the built-in running-coach questionnaire.
func DefaultCatalog() []Section {
	return []Section{
		{
			ID:    "about",
			Title: "About you",
			Intro: "Let's start with a little about you, so the numbers I use actually fit.",
			Questions: []Question{
				{ID: QAgeRange, Prompt: "Which age range are you in?", Kind: KindSingleSelect,
					Options: opts("under_25", "Under 25", "25_34", "25-34", "35_44", "35-44", "45_54", "45-54", "55_plus", "55+")},
				{ID: QUnits, Prompt: "Kilometres or miles?", Kind: KindSingleSelect,
					Options: opts("km", "Kilometres", "mi", "Miles")},
			},
			Reaction: Table("about.reaction",
				When(Is(QAgeRange, "45_54", "55_plus"), "Good to know. I'll build in a bit more recovery between the hard days."),
				Otherwise("Got it. That's all I need on the basics."),
			),
		},
		{
			ID:    "background",
			Title: "Running background",
			Intro: "Now tell me where your running is today. Honest answers make a better plan.",
			Questions: []Question{
				{ID: QExperience, Prompt: "How would you describe your running right now?", Kind: KindSingleSelect,
					Options: opts("new", "Brand new", "returning", "Coming back after a break", "casual", "Casual, a few runs a month", "regular", "Regular, most weeks", "competitive", "Training for performance")},
				{ID: QWeeklyVolume, Prompt: "Roughly how far do you run in a typical week?", Kind: KindDistance,
					Condition: IsNot(QExperience, "new")},
				{ID: QEasyPace, Prompt: "What does an easy, conversational pace feel like for you?", Kind: KindPace,
					SkipLabel: "I'm not sure", Condition: IsNot(QExperience, "new")},
				{ID: QLongestRun, Prompt: "What's the longest run you've done in the last two months?", Kind: KindDistance,
					Condition: Is(QExperience, "regular", "competitive")},
			},
			Reaction: Table("background.reaction",
				When(Is(QExperience, "new"), "Starting fresh is a great place to be. Nothing to unlearn."),
				When(Is(QExperience, "returning"), "Welcome back. We'll rebuild gradually so your body catches up with your motivation."),
				When(Is(QExperience, "competitive"), "You've got a real base. We can be more specific with the work."),
				Otherwise("Nice. That gives me a solid picture of your starting point."),
			),
		},
		{
			ID:    "goal",
			Title: "Your goal",
			Intro: "Let's talk about what you're working toward.",
			Questions: []Question{
				{ID: QGoal, Prompt: "What's your main goal right now?", Kind: KindSingleSelect,
					Options: opts("race", "Train for a race", "fitness", "Get fitter", "weight", "Lose weight", "consistency", "Run more consistently", "return_from_injury", "Come back from an injury")},
				{ID: QRaceDistance, Prompt: "Which distance are you racing?", Kind: KindSingleSelect,
					Options: opts("5k", "5K", "10k", "10K", "half", "Half marathon", "marathon", "Marathon", "ultra", "Ultra"),
					Condition: Is(QGoal, "race")},
				{ID: QRaceDate, Prompt: "When is race day?", Kind: KindDate, Condition: Is(QGoal, "race")},
				{ID: QGoalPace, Prompt: "Do you have a goal race pace?", Kind: KindPace,
					SkipLabel: "No target yet", Condition: Is(QGoal, "race")},
				{ID: QRacePriority, Prompt: "What matters most on race day?", Kind: KindSingleSelect,
					Options: opts("finish", "Finishing strong", "time", "Hitting a time", "enjoy", "Enjoying the day"),
					Condition: Is(QGoal, "race")},
				{ID: QWhy, Prompt: "In a sentence, why does this matter to you?", Kind: KindFreeText},
			},
			Reaction: Table("goal.reaction",
				When(AllOf(Is(QGoal, "race"), Is(QRaceDistance, "marathon", "ultra")), "A long one. We'll respect the distance and build patiently."),
				When(Is(QGoal, "race"), "A race on the calendar. That gives everything a clear direction."),
				When(Is(QGoal, "return_from_injury"), "Coming back carefully is the smartest goal there is."),
				Otherwise("That's a goal I can build around."),
			),
		},
		{
			ID:    "schedule",
			Title: "Schedule",
			Intro: "The best plan is the one that fits your week. Let's map it.",
			Questions: []Question{
				{ID: QDaysPerWeek, Prompt: "How many days a week can you run?", Kind: KindSingleSelect,
					Options: opts("2", "2 days", "3", "3 days", "4", "4 days", "5", "5 days", "6", "6 days")},
				{ID: QPreferredDays, Prompt: "Which days usually work best?", Kind: KindMultiSelect,
					Options: withNone("No preference", opts("mon", "Monday", "tue", "Tuesday", "wed", "Wednesday", "thu", "Thursday", "fri", "Friday", "sat", "Saturday", "sun", "Sunday"))},
				{ID: QSessionLength, Prompt: "How long can a typical weekday run be?", Kind: KindSingleSelect,
					Options: opts("30", "About 30 minutes", "45", "About 45 minutes", "60", "About an hour", "90", "90 minutes or more")},
				{ID: QLongRunDay, Prompt: "Which day suits your long run?", Kind: KindSingleSelect,
					Options:   opts("sat", "Saturday", "sun", "Sunday", "weekday", "A weekday"),
					Condition: Is(QDaysPerWeek, "4", "5", "6")},
			},
			Reaction: Table("schedule.reaction",
				When(Is(QDaysPerWeek, "2"), "Two days is enough to make real progress if we make them count."),
				When(Is(QDaysPerWeek, "5", "6"), "That's a lot of running time. I'll make sure plenty of it is easy."),
				Otherwise("That's a schedule we can work with."),
			),
		},
		{
			ID:    "challenges",
			Title: "Challenges",
			Intro: "Everyone hits friction somewhere. Let's find yours.",
			Questions: []Question{
				{ID: QBiggestChallenge, Prompt: "What gets in your way the most?", Kind: KindSingleSelect,
					Options: opts("pacing", "Pacing myself", "consistency", "Staying consistent", "motivation", "Motivation", "time", "Finding time", "injury", "Getting hurt", "plateau", "Not improving")},
				{ID: QPastStruggles, Prompt: "Have any of these derailed you before?", Kind: KindMultiSelect,
					Options: withNone("None of these", opts("boredom", "Boredom", "burnout", "Burnout", "injuries", "Injuries", "life_events", "Life getting busy"))},
			},
			Reaction: Table("challenges.reaction",
				When(Has(QPastStruggles, "burnout"), "Burnout is usually a plan problem, not a you problem. We'll keep the load honest."),
				When(Is(QBiggestChallenge, "pacing"), "Pacing is a skill. We'll practise it on purpose."),
				Otherwise("Thanks for being straight with me. That shapes a lot."),
			),
		},
		{
			ID:    "health",
			Title: "Health",
			Intro: "Last stretch. A few questions about how your body is doing.",
			Questions: []Question{
				{ID: QInjuries, Prompt: "Any current or recurring injuries?", Kind: KindMultiSelect,
					Options: withNone("None", opts("knee", "Knee", "shin", "Shins", "achilles", "Achilles", "hip", "Hip", "foot", "Foot"))},
				{ID: QInjuryStatus, Prompt: "How is it right now?", Kind: KindSingleSelect,
					Options:   opts("healed", "Healed, just cautious", "managing", "Managing it", "active", "Still painful"),
					Condition: Has(QInjuries, "knee", "shin", "achilles", "hip", "foot")},
				{ID: QSleep, Prompt: "How much do you usually sleep?", Kind: KindSingleSelect,
					Options: opts("under_6", "Under 6 hours", "6_7", "6-7 hours", "7_8", "7-8 hours", "over_8", "More than 8 hours")},
				{ID: QStress, Prompt: "How would you rate your stress lately?", Kind: KindSingleSelect,
					Options: opts("low", "Low", "moderate", "Moderate", "high", "High")},
			},
			Reaction: Table("health.reaction",
				When(Is(QInjuryStatus, "active"), "Thanks for flagging that. We'll keep things gentle until it settles."),
				When(AnyOf(Is(QSleep, "under_6"), Is(QStress, "high")), "Recovery matters as much as the running. I'll factor that in."),
				Otherwise("That's everything. Thanks for taking the time."),
			),
		},
	}
}
