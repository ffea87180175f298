package iso8583

// Messages captured between a POS terminal and its acquirer, without envelope.
const (
	payRequest        = "60000300006031003101000200703C06C000C49A1716622424230000006900000000000000111100007914155408242903071000000012313030313639313938343332393030343538323030304200695049303634303430323032303531343030303032343032313036383730303030303031303630363030303036393037303844333930334633393038303856302E302E332E303135360000000000000000241000000000000001459F260846FD62985CAAE7589F2701809F101307011703A00000010A0100000500001EF41C469F37049536C9B89F36020C66950500000000009A032208249C01009F02060000000011115F2A02015682027C009F1A0201569F03060000000000009F330360E9C89F34030000009F3501229F1E0831323334353637388408A0000003330101029F090200309F4104000000010013220007270006000024FF02213436307C30307C32383638387C34333232323834390021534D303136CDC489E91786D0BE01F543D813611BCD3833353932373435"
	payResponse       = "60000300006031003101000210703E02810EF08B31166224242300000069000000000000001111000079141556082400000824000000084843166558303030303430303237363136353038353230303130303136393139383433313636353538313230303041BAD3C4CFCAA1D2F8C2A1D0C5CFA2BCBCCAF5D3D0CFDEB9ABCBBE20202020202020202020202020202230333039202020202020203438343320202020202020313536240000000000000001459F260846FD62985CAAE7589F2701809F101307011703A00000010A0100000500001EF41C469F37049536C9B89F36020C66950500000000009A032208249C01009F02060000000011115F2A02015682027C009F1A0201569F03060000000000009F330360E9C89F34030000009F3501229F1E0831323334353637388408A0000003330101029F090200309F410400000001000730302BB3C9B9A6011445463031333336383734373437303733334132463246373036313739324536423634363232443734364132453633364636443246363833353644363537323633363836313645373445463032313843394138433245424338434644364134434345314339464442444531434245334236454500172200072700060007004246314136464335"
	signInRequest     = "600003000060310031010008000020000000C408120000783130303136393139383433323930303435383230303042004750493034323034303230323035313430303030323430323130363837303030303030313038303856302E302E332E30040000000000000000110000072600500003303120"
	signInResponse    = "60000300006031003101000810003800010AC401140000781415440824080306290030303030303030303030303030303130303136393139383433323930303435383230303042004750493034323034303230323035313430303030323430323130363837303030303030313038303856302E302E332E300004B3C9B9A6001100000727011000571CD7E77C6ABCE8DE71C54E43103F3691A5827EE743CC37DD604094AF22746A4BD094F7D626E95138BC549EE4AA89E70E2CFA5B77D3F84D06F7"
	downloadRequest   = "600003000060310031010008000000000000C408103130303136393139383433323930303435383230303042004750493034323034303230323035313430303030323430323130363837303030303030313038303856302E302E332E3004000000000000000011000000014200"
	downloadResponse  = "60000300006031003101000810001800000AE00114163829082330303030303030303030303030303130303136393139383433323930303435383230303042C4ABCEC4D5DCD3D0CFDEB9ABCBBE20202020202020202020202020202020202020202020202020200004B3C9B9A60011000000014200006439354638454530363337444143453935423232383235443533323630453744424238373633383230363334303343343736393843304131363334463446463231"
	signatureRequest  = "600003000060310031010009205022000008C00A151662242423000000690000000011110000790824583030303034303032373631313030313639313938343332393030343538323030304204000000000000000050FF001ABAD3C4CFCAA1D2F8C2A1D0C5CFA2BCBCCAF5D3D0CFDEB9ABCBBEFF0104CFFBB7D1FF020101FF0607202208241415560008070007270126000001000000008000000040000000807F0000481CB93FCFF8E273061BDF301D76CB6869AEE9705A37872F81613C17DADB45AE6006D1C45C20399538F24115D37CA710009388652D49B88EA3FB843D29684CA53982D5AE3A1EA03191299C498B9F39DDA2825D982FD5C2312A115EFD6248CA1D9D8F140FB3AF676970FF023542334236433246"
	signatureResponse = "60000300006031003101000930002000000AC00111000079583030303034303032373631303031303031363931393834333136363535383132303030410004B3C9B9A60008070007273839314333323442"
)

var posFixtures = []struct {
	name string
	hex  string
}{
	{"PAY_REQUEST", payRequest},
	{"PAY_RESPONSE", payResponse},
	{"SIGNIN_REQUEST", signInRequest},
	{"SIGNIN_RESPONSE", signInResponse},
	{"DOWNLOAD_REQUEST", downloadRequest},
	{"DOWNLOAD_RESPONSE", downloadResponse},
	{"SIGN_IMG_REQUEST", signatureRequest},
	{"SIGN_IMG_RESPONSE", signatureResponse},
}

// Field 55 of payRequest.
const chipData = "9F260846FD62985CAAE7589F2701809F101307011703A00000010A0100000500001EF41C469F37049536C9B89F36020C66950500000000009A032208249C01009F02060000000011115F2A02015682027C009F1A0201569F03060000000000009F330360E9C89F34030000009F3501229F1E0831323334353637388408A0000003330101029F090200309F410400000001"
