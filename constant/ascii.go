package constant

// AsciiArtLogo is printed above the root command help.
const AsciiArtLogo = `
 _    _           _
| | _(_) ___  ___| | __
| |/ / |/ _ \/ __| |/ /
|   <| | (_) \__ \   <
|_|\_\_|\___/|___/_|\_\`
