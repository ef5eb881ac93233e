package validation

// BatchRequestSchema describes the body of a batch submission.
const BatchRequestSchema = `{
  "type": "object",
  "required": ["form", "regions"],
  "properties": {
    "form": {
      "type": "object",
      "properties": {
        "job_title": {"type": "string"},
        "job_description": {"type": "string"},
        "query": {"type": "string"},
        "soft_skills": {"type": "array", "items": {"type": "string"}},
        "hard_skills": {"type": "array", "items": {"type": "string"}},
        "location_flexibility": {"type": "string"},
        "contract_type": {"type": "string"},
        "education_level": {"type": "string"},
        "seniority": {"type": "string"},
        "min_years_experience": {"type": "number", "minimum": 0},
        "field_of_study": {"type": "array", "items": {"type": "string"}}
      }
    },
    "regions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["regionCode"],
        "properties": {
          "regionCode": {"type": "string", "minLength": 1},
          "locations": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// RegionCatalogSchema describes the region catalog file.
const RegionCatalogSchema = `{
  "type": "object",
  "required": ["version", "regions"],
  "properties": {
    "version": {"type": "string"},
    "lastUpdated": {"type": "string"},
    "regions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["code", "name"],
        "properties": {
          "code": {"type": "string", "pattern": "^[A-Z]{2}$"},
          "name": {"type": "string", "minLength": 1},
          "currency": {"type": "string"},
          "locations": {"type": "array", "items": {"type": "string", "minLength": 1}}
        }
      }
    }
  }
}`

var (
	BatchRequest  = MustCompile("batch-request", BatchRequestSchema)
	RegionCatalog = MustCompile("region-catalog", RegionCatalogSchema)
)
