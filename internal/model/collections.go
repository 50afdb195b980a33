package model

// Collection names.
const (
	CollectionUsers             = "users"
	CollectionPets              = "pets"
	CollectionAdoptionRequests  = "adoptionRequests"
	CollectionDonationCampaigns = "donationCampaigns"
)

// Field names shared across collections.
const (
	FieldEmail    = "email"
	FieldRole     = "role"
	FieldIsPaused = "isPaused"
)
