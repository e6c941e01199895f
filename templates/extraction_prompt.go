package templates

import "fmt"

// Keys the generative extractor must return
const (
	KeyBookingReference = "Booking Reference"
	KeyTitle            = "Title"
	KeyLocation         = "Location"
	KeyTravelDate       = "Travel Date"
	KeyLeadTravelerName = "Lead Traveler Name"
	KeyHotelPickup      = "Hotel Pickup"
	KeyStatus           = "Status"
)

// BookingKeys lists the extraction keys in prompt order
var BookingKeys = []string{
	KeyBookingReference,
	KeyTitle,
	KeyLocation,
	KeyTravelDate,
	KeyLeadTravelerName,
	KeyHotelPickup,
	KeyStatus,
}

const extractionPromptTemplate = `Extract the following booking details from the given email:
- Booking Reference
- Title
- Location
- Travel Date
- Lead Traveler Name
- Hotel Pickup
- Status

Return the details as a valid JSON object in exactly this format:
{
  "Booking Reference": "<reference>",
  "Title": "<title>",
  "Location": "<location>",
  "Travel Date": "<travel_date>",
  "Lead Traveler Name": "<lead_traveler>",
  "Hotel Pickup": "<hotel_pickup>",
  "Status": "<confirmed|cancelled|amended>"
}
Ensure the response is strictly in JSON format without extra commentary.

Email content:
%s
`

// ExtractionPrompt renders the extraction prompt for one email body
func ExtractionPrompt(emailText string) string {
	return fmt.Sprintf(extractionPromptTemplate, emailText)
}
