package generator

// Sample returns a small valid document to experiment with.
func Sample() string {
	return `{
  "user": {
    "id": 1,
    "name": "John Doe",
    "address": {
      "city": "New York",
      "country": "USA"
    }
  },
  "items": [
    {
      "name": "item1"
    },
    {
      "name": "item2"
    }
  ]
}
`
}

// BrokenSample returns Sample with two mistakes: a missing comma and a trailing comma.
func BrokenSample() string {
	return `{
  "user": {
    "id": 1,
    "name": "John Doe",
    "address": {
      "city": "New York"
      "country": "USA"
    }
  },
  "items": [
    {
      "name": "item1",
    }
  ]
}
`
}
