package oasgen

// ExampleJSON is a sample covering every inference branch: integer formats,
// date strings, nested objects, arrays of objects, matrices, mixed arrays and
// null.
const ExampleJSON = `{
  "numbersMock": {
    "smallInt": -20,
    "bigInt": 2147483647,
    "unsafeInt": 9999999999999999,
    "notInt": 12.2
  },
  "stringsMock": {
    "stringTest": "Hello World",
    "isoDate": "1999-12-31",
    "isoDateTime": "1999-12-31T23:59:59Z"
  },
  "objectsMock": {
    "child": {"child": true},
    "childList": [{"child": true}],
    "childMatrix": [[{"child": true}]],
    "mixedObjectsArray": [
      [1, 2, {"test": true}],
      {"child": true},
      {"son": true},
      {"son": true},
      {"offspring": true}
    ],
    "nullable": null
  },
  "listMock": [1, 2, 3, 4, 5],
  "matrixMock": [[1, 2], [3, 4]],
  "mixedArrayMock": [1, "two", 3, "four"]
}`
