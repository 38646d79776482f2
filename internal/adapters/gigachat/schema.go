package gigachat

import "github.com/santhosh-tekuri/jsonschema/v5"

// analysisSchema is enforced at the boundary: the model's JSON is rejected
// (and the caller falls back) on any shape mismatch instead of trusting
// arbitrary keys.
const analysisSchema = `{
  "type": "object",
  "required": ["features"],
  "properties": {
    "mood_interpretation": {"type": ["string", "null"]},
    "explanation": {"type": ["string", "null"]},
    "features": {
      "type": "object",
      "required": ["valence", "energy", "danceability"],
      "properties": {
        "valence": {"type": "number", "minimum": 0, "maximum": 1},
        "energy": {"type": "number", "minimum": 0, "maximum": 1},
        "danceability": {"type": "number", "minimum": 0, "maximum": 1},
        "acousticness": {"type": "number", "minimum": 0, "maximum": 1},
        "tempo": {"type": "number", "minimum": 0, "maximum": 300}
      }
    },
    "filters": {
      "type": ["object", "null"],
      "properties": {
        "genres": {"type": ["array", "null"], "items": {"type": "string"}},
        "language": {"type": ["string", "null"]},
        "year_start": {"type": ["integer", "null"]},
        "year_end": {"type": ["integer", "null"]},
        "artist": {"type": ["string", "null"]}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("analysis.schema.json", analysisSchema)
