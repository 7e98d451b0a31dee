package calc

const envelopeSchema = `{
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "error": {"type": ["string", "null"]},
    "data": {"type": ["object", "null"]}
  }
}`

const chartSchema = `{
  "type": "object",
  "required": ["八字"],
  "properties": {
    "八字": {"type": "string", "minLength": 8},
    "日主": {"type": "string"},
    "生肖": {"type": "string"},
    "阳历": {"type": "string"},
    "农历": {"type": "string"},
    "年柱": {"$ref": "#/definitions/pillar"},
    "月柱": {"$ref": "#/definitions/pillar"},
    "日柱": {"$ref": "#/definitions/pillar"},
    "时柱": {"$ref": "#/definitions/pillar"},
    "神煞": {"type": "object"},
    "大运": {"type": "object"}
  },
  "definitions": {
    "pillar": {
      "type": "object",
      "properties": {
        "天干": {"type": "object", "required": ["天干"], "properties": {"天干": {"type": "string"}}},
        "地支": {"type": "object", "required": ["地支"], "properties": {"地支": {"type": "string"}}}
      }
    }
  }
}`
