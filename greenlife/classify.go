package greenlife

import "html/template"

// Category is the plant-health classification of a reading.
type Category uint8

// Enum of plant health categories
const (
	Happy Category = iota
	Danger
	Cold
	Hot
	Thirsty
	Flooded
	AlarmActive
)

var categoryNames = [...]string{
	Happy:       "happy",
	Danger:      "danger",
	Cold:        "cold",
	Hot:         "hot",
	Thirsty:     "thirsty",
	Flooded:     "flooded",
	AlarmActive: "alarm",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classification is a category with the message rendered for plain text sinks.
type Classification struct {
	Category Category
	Message  string
}

// Classify turns a reading and the alarm flag into a plant-health category.
// An active alarm wins over everything else.
func Classify(r Reading, alarmActive bool) Classification {
	c := classify(r, alarmActive)
	return Classification{Category: c, Message: Text(c)}
}

func classify(r Reading, alarmActive bool) Category {
	if alarmActive {
		return AlarmActive
	}
	tempOK, humidOK := r.TempOK(), r.HumidOK()
	switch {
	case tempOK && humidOK:
		return Happy
	case !tempOK && !humidOK:
		return Danger
	case !tempOK:
		if r.Temp < TempLow {
			return Cold
		}
		return Hot
	default:
		if r.Humidity < HumidLow {
			return Thirsty
		}
		return Flooded
	}
}

var textMessages = [...]string{
	Happy:       "Your plant is happy!",
	Danger:      "Your plant is in danger!",
	Cold:        "Your plant is cold!",
	Hot:         "Your plant is hot!",
	Thirsty:     "Your plant is thirsty!",
	Flooded:     "Too much water detected!",
	AlarmActive: "Alarm on, press button A on the board to silence it",
}

// Text renders the ASCII message used by the terminal, logs and reports.
func Text(c Category) string {
	if int(c) < len(textMessages) {
		return textMessages[c]
	}
	return "Unknown plant state"
}

var htmlMessages = [...]template.HTML{
	Happy:       "Your plant is happy! &#127793;",
	Danger:      "Your plant is in danger! &#9888;",
	Cold:        "Your plant is cold! &#10052;",
	Hot:         "Your plant is hot! &#9728;",
	Thirsty:     "Your plant is thirsty! &#128167;",
	Flooded:     "Too much water detected! &#127754;",
	AlarmActive: "Alarm on, press button A on the board to silence it &#128276;",
}

// HTML renders the entity-encoded message for the status page.
func HTML(c Category) template.HTML {
	if int(c) < len(htmlMessages) {
		return htmlMessages[c]
	}
	return template.HTML(template.HTMLEscapeString(Text(c)))
}
