package generator

import (
	"fmt"

	"github.com/wayfarerhq/wayfarer/common/llm"
	"github.com/wayfarerhq/wayfarer/internal/model"
)

const promptTemperature = 0.7

// itineraryOutput is the structured-output contract for itinerary generation.
// Field descriptions steer the model; validateItinerary enforces the result.
type itineraryOutput struct {
	Itinerary []dayOutput `json:"itinerary" jsonschema:"required,description=One entry per day of the trip in day order"`
}

type dayOutput struct {
	Day        int              `json:"day" jsonschema:"required,description=1-based day number"`
	Theme      string           `json:"theme" jsonschema:"required,description=Theme for the day such as Historical Sites or Local Cuisine"`
	Activities []activityOutput `json:"activities" jsonschema:"required,description=Activities for the day covering the Morning then Afternoon then Evening slots"`
}

type activityOutput struct {
	Time        string `json:"time" jsonschema:"required,description=Time slot label: Morning or Afternoon or Evening"`
	Description string `json:"description" jsonschema:"required,description=What to do including practical tips such as pre-booking advice"`
	Location    string `json:"location" jsonschema:"required,description=Specific venue or area name rather than a general district"`
}

var itinerarySchema = llm.GenerateSchema[itineraryOutput]()

func (o itineraryOutput) days() []model.Day {
	days := make([]model.Day, len(o.Itinerary))
	for i, d := range o.Itinerary {
		activities := make([]model.Activity, len(d.Activities))
		for j, a := range d.Activities {
			activities[j] = model.Activity{
				Time:        a.Time,
				Description: a.Description,
				Location:    a.Location,
			}
		}
		days[i] = model.Day{
			Day:        d.Day,
			Theme:      d.Theme,
			Activities: activities,
		}
	}
	return days
}

func userPrompt(destination string, durationDays int) string {
	return fmt.Sprintf(userPromptTemplate, durationDays, destination, durationDays)
}

const systemPrompt = `You are a professional travel planner. You create detailed, practical travel itineraries grounded in real places, and you always respond in the exact structure requested.`

const userPromptTemplate = `Create a detailed travel itinerary for a %d-day trip to %s.

Guidelines:
- Give each day a clear theme (e.g. "Historical Sites", "Cultural Immersion", "Nature & Adventure")
- Cover the Morning, Afternoon and Evening slots of every day
- Name specific locations, not just general areas
- Include practical tips in descriptions (e.g. "Pre-book tickets online", "Best visited early morning")
- Keep activities realistic for their time slot and account for travel time between locations
- Mix must-see attractions, cultural experiences and local cuisine
- Make the itinerary flow logically from day to day

Number the days sequentially from 1 and return exactly %d days.`
