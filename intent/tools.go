package intent

import "google.golang.org/genai"

// searchPlacesDeclaration returns the function declaration for Gemini
func searchPlacesDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        string(KindSearchPlaces),
		Description: "Search for places near a location using Google Maps",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "What to search for (e.g., 'sushi restaurants', 'gas stations')",
				},
				"location": {
					Type:        genai.TypeString,
					Description: "City, address, or zip code to search near",
				},
			},
			Required: []string{"query", "location"},
		},
	}
}

func reservationInfoDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        string(KindReservationInfo),
		Description: "Get reservation and booking information for a specific place",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"place_name": {
					Type:        genai.TypeString,
					Description: "Name of the place to book at",
				},
				"location": {
					Type:        genai.TypeString,
					Description: "Area the place is in, if the caller mentioned one",
				},
			},
			Required: []string{"place_name"},
		},
	}
}

func sendMessageDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        string(KindSendMessage),
		Description: "Send details via SMS to the caller's phone",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"message": {
					Type:        genai.TypeString,
					Description: "The message content to send",
				},
			},
			Required: []string{"message"},
		},
	}
}

func buildTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				searchPlacesDeclaration(),
				reservationInfoDeclaration(),
				sendMessageDeclaration(),
			},
		},
	}
}
