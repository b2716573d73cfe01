package ui

// iconBytes is a 16x16 PNG used for the tray icon.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x31, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x80, 0x82, 0xe8,
	0xe8, 0x0f, 0xff, 0x49, 0xc1, 0x0c, 0xe8, 0xa0, 0xba, 0xfa, 0xd7, 0x7f,
	0x52, 0x30, 0x03, 0xb2, 0xcd, 0xa4, 0x6a, 0x86, 0x61, 0xb0, 0x4b, 0x46,
	0x0d, 0x18, 0x35, 0x60, 0x98, 0x18, 0x40, 0x71, 0x66, 0xa2, 0x34, 0x3b,
	0x03, 0x00, 0x47, 0x6f, 0xb2, 0x4f, 0x52, 0xe6, 0xe4, 0x56, 0x00, 0x00,
	0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
