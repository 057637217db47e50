package normalize

// Alias priority lists. The first path present in a raw record wins.
// Paths use gjson syntax so nested shapes like {"muscles":{"primary":[...]}} resolve.
var (
	nameKeys              = []string{"name", "title", "exerciseName", "exercise_name"}
	slugKeys              = []string{"slug", "handle"}
	externalIDKeys        = []string{"externalId", "external_id", "id", "uuid", "_id"}
	primaryMuscleKeys     = []string{"primaryMuscles", "primary_muscles", "muscles.primary", "targetMuscles", "target", "muscle"}
	secondaryMuscleKeys   = []string{"secondaryMuscles", "secondary_muscles", "muscles.secondary", "synergists"}
	requiredEquipmentKeys = []string{"requiredEquipment", "required_equipment", "equipment.required", "equipment"}
	optionalEquipmentKeys = []string{"optionalEquipment", "optional_equipment", "equipment.optional"}
	instructionKeys       = []string{"instructions", "steps", "instructionSteps", "description"}
	cautionKeys           = []string{"cautions", "commonMistakes", "common_mistakes", "mistakes", "warnings"}
	aliasKeys             = []string{"aliases", "alternateNames", "alternate_names", "synonyms"}
	mediaKeys             = []string{"media", "images", "videos", "gifUrl", "image"}
	categoryKeys          = []string{"category", "type", "bodyPart", "body_part"}
	patternKeys           = []string{"pattern", "movementPattern", "movement_pattern", "movement"}
	levelKeys             = []string{"level", "difficulty"}
	forceKeys             = []string{"force"}
	mechanicKeys          = []string{"mechanic", "mechanics"}
	sourceKeys            = []string{"source", "origin"}
	updatedAtKeys         = []string{"updatedAt", "updated_at", "lastModified", "modified"}
)
