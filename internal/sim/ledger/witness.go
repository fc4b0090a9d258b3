package ledger

import "strings"

// Witness fragments are deliberately vague: a witness saw a shape or a
// hurried exit, not the crime. Ground truth never leaves the ledger.
var witnessTemplates = map[Kind][]string{
	KindTheft: {
		"I noticed {actor} acting strangely near {target}'s place. Something felt off.",
		"I saw someone moving quickly away from where {target} usually is. Couldn't make out who.",
		"There was a commotion near {target}'s place. I didn't see exactly what happened.",
		"I caught a glimpse of someone hurrying off around the time {target} said they were robbed.",
		"I saw {actor} watching {target} from a distance earlier. Didn't think much of it then.",
	},
	KindAssault: {
		"I heard raised voices near {target}'s place but didn't want to get involved.",
		"I saw two people arguing hard. One of them might have been {target}.",
		"I noticed {target} looked shaken afterward, but I don't know why.",
		"There was a scuffle. I only caught the tail end of it.",
	},
	KindBribe: {
		"I saw {actor} meeting with someone privately. They exchanged something, I couldn't tell what.",
		"A quiet conversation stopped the moment I walked past. Something felt wrong about it.",
		"I saw tokens change hands between {actor} and someone I couldn't place.",
	},
	KindBlackmail: {
		"I overheard part of a conversation that sounded like a threat. Someone was being pressured.",
		"I saw a message being passed. The one who read it went pale.",
		"I heard {actor} talking in low tones. The other person looked scared.",
	},
	KindSabotage: {
		"Something broke that shouldn't have. I saw a figure leaving the area in a hurry.",
		"I noticed someone near the works earlier that evening. Couldn't see their face.",
		"I heard a crack and turned around. Whoever did it was already gone.",
	},
}

var fallbackWitnessTemplates = []string{
	"Something happened near {actor}'s place. I'm not sure what.",
	"I noticed unusual activity but couldn't make sense of it.",
	"There was something going on. I only caught a glimpse.",
}

func (l *Ledger) witnessFragment(kind Kind, actor, target string) string {
	templates, ok := witnessTemplates[kind]
	if !ok {
		templates = fallbackWitnessTemplates
	}
	t := templates[l.rng.Intn(len(templates))]
	if actor == "" {
		actor = "someone"
	}
	if target == "" {
		target = "someone"
	}
	t = strings.ReplaceAll(t, "{actor}", actor)
	return strings.ReplaceAll(t, "{target}", target)
}
