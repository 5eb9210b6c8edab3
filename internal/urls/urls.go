package urls

// ECPReference documents the External Control Protocol, including the
// search/browse command and the device settings that gate it.
const ECPReference = "https://developer.roku.com/docs/developer-program/dev-tools/external-control-api.md"
